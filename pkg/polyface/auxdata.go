package polyface

import "fmt"

// AuxDataType classifies the values stored in an aux channel.
type AuxDataType int

const (
	AuxScalar AuxDataType = iota
	AuxDistance
	AuxVector
	AuxPoint
)

// BlockSize returns the number of float64 values per vertex.
func (t AuxDataType) BlockSize() int {
	switch t {
	case AuxVector, AuxPoint:
		return 3
	default:
		return 1
	}
}

func (t AuxDataType) String() string {
	switch t {
	case AuxScalar:
		return "scalar"
	case AuxDistance:
		return "distance"
	case AuxVector:
		return "vector"
	case AuxPoint:
		return "point"
	}
	return "unknown"
}

// AuxChannelData is one block of per-vertex values, e.g. one time step.
type AuxChannelData struct {
	Input  float64
	Values []float64
}

// AuxChannel is a named set of per-vertex data blocks.
type AuxChannel struct {
	Name string
	Type AuxDataType
	Data []*AuxChannelData
}

// AuxChannels is the channel list of an AuxData.
type AuxChannels []*AuxChannel

// AuxData carries per-vertex data that is indexed independently of the
// welded geometry.
type AuxData struct {
	Channels AuxChannels
	Indices  []int // one-based, parallel to the point index stream
}

// ValueCount returns the number of vertices each block holds.
func (c *AuxChannel) ValueCount() int {
	if len(c.Data) == 0 {
		return 0
	}
	return len(c.Data[0].Values) / c.Type.BlockSize()
}

// CloneEmpty returns a channel with the same name, type and block inputs
// but no values.
func (c *AuxChannel) CloneEmpty() *AuxChannel {
	out := &AuxChannel{Name: c.Name, Type: c.Type}
	for _, d := range c.Data {
		out.Data = append(out.Data, &AuxChannelData{Input: d.Input})
	}
	return out
}

// AppendDataByIndex appends the values src holds for vertex index to each
// block of c. c must have been created from src by CloneEmpty.
func (c *AuxChannel) AppendDataByIndex(src *AuxChannel, index int) {
	bs := c.Type.BlockSize()
	for i, d := range c.Data {
		if i >= len(src.Data) {
			break
		}
		vals := src.Data[i].Values
		d.Values = append(d.Values, vals[index*bs:(index+1)*bs]...)
	}
}

// AppendInterpolated appends the blend sum of fractions[k] times the
// values of vertex indices[k] to each block of c.
func (c *AuxChannel) AppendInterpolated(src *AuxChannel, indices []int, fractions []float64) {
	bs := c.Type.BlockSize()
	for i, d := range c.Data {
		if i >= len(src.Data) {
			break
		}
		vals := src.Data[i].Values
		block := make([]float64, bs)
		for k, idx := range indices {
			for j := 0; j < bs; j++ {
				block[j] += fractions[k] * vals[idx*bs+j]
			}
		}
		d.Values = append(d.Values, block...)
	}
}

// CloneEmpty returns channels with matching layout and no values.
func (cs AuxChannels) CloneEmpty() AuxChannels {
	out := make(AuxChannels, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.CloneEmpty())
	}
	return out
}

// ValueCount returns the vertex count of the first channel.
func (a *AuxData) ValueCount() int {
	if a == nil || len(a.Channels) == 0 {
		return 0
	}
	return a.Channels[0].ValueCount()
}

// Validate requires every block of every channel to hold the same number
// of whole vertex values as the first block of the first channel.
func (a *AuxData) Validate() error {
	want := a.ValueCount()
	for ci, c := range a.Channels {
		bs := c.Type.BlockSize()
		if len(c.Data) == 0 {
			return &ValidationError{
				Code:    CodeAuxLayout,
				Index:   ci,
				Message: "aux channel " + c.Name + " has no data blocks",
			}
		}
		for _, d := range c.Data {
			if len(d.Values) != want*bs {
				return &ValidationError{
					Code:    CodeAuxLayout,
					Index:   ci,
					Message: fmt.Sprintf("aux channel %s holds %d values, want %d", c.Name, len(d.Values), want*bs),
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (a *AuxData) Clone() *AuxData {
	out := &AuxData{Indices: append([]int(nil), a.Indices...)}
	for _, c := range a.Channels {
		cc := &AuxChannel{Name: c.Name, Type: c.Type}
		for _, d := range c.Data {
			cc.Data = append(cc.Data, &AuxChannelData{
				Input:  d.Input,
				Values: append([]float64(nil), d.Values...),
			})
		}
		out.Channels = append(out.Channels, cc)
	}
	return out
}
