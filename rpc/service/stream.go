package service

import "bitrpc/wire"

// sliceStream is a FrameIterator over a fixed, pre-encoded sequence of
// frame bodies.
type sliceStream struct {
	frames [][]byte
	pos    int
}

// NewSliceStream encodes each of objs with wire.Default eagerly and returns
// a FrameIterator over the results, the common case for a stream handler
// that already knows its whole response sequence up front (spec §8 S3).
func NewSliceStream(objs []any) (FrameIterator, error) {
	frames := make([][]byte, 0, len(objs))
	for _, obj := range objs {
		w := wire.NewWriter(0)
		if err := wire.WriteObject(wire.Default, obj, w); err != nil {
			return nil, err
		}
		frames = append(frames, w.Bytes())
	}
	return &sliceStream{frames: frames}, nil
}

func (s *sliceStream) Next() ([]byte, bool, error) {
	if s.pos >= len(s.frames) {
		return nil, false, nil
	}
	f := s.frames[s.pos]
	s.pos++
	return f, true, nil
}

// FuncStream adapts a plain function into a FrameIterator, for handlers
// that want to generate frames lazily (e.g. from a channel or generator).
type FuncStream func() (frame []byte, ok bool, err error)

func (f FuncStream) Next() ([]byte, bool, error) { return f() }
