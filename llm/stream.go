package llm

import (
	"context"
	"io"
	"strings"
	"sync"
)

// StreamReader delivers an ordered sequence of text fragments from an
// in-flight generation. Recv returns io.EOF after the final fragment.
// Close abandons the stream and cancels the producer.
type StreamReader struct {
	chunks <-chan string
	errs   <-chan error
	cancel context.CancelFunc

	closeOnce sync.Once
}

// NewStreamReader wires a reader over producer-owned channels. The producer
// sends fragments on chunks and, on abnormal end, exactly one error on errs;
// it closes chunks when the generation finishes. cancel is invoked on Close
// and must stop the producer.
func NewStreamReader(chunks <-chan string, errs <-chan error, cancel context.CancelFunc) *StreamReader {
	if cancel == nil {
		cancel = func() {}
	}
	return &StreamReader{chunks: chunks, errs: errs, cancel: cancel}
}

// Recv returns the next text fragment. It returns io.EOF once the stream is
// exhausted, or the producer's error if the generation failed mid-stream.
func (r *StreamReader) Recv() (string, error) {
	select {
	case err := <-r.errs:
		if err != nil {
			return "", err
		}
	default:
	}
	chunk, ok := <-r.chunks
	if !ok {
		select {
		case err := <-r.errs:
			if err != nil {
				return "", err
			}
		default:
		}
		return "", io.EOF
	}
	return chunk, nil
}

// Close stops the generation. Recv calls after Close drain any buffered
// fragments and then report io.EOF or the cancellation error.
func (r *StreamReader) Close() error {
	r.closeOnce.Do(r.cancel)
	return nil
}

// Collect drains the stream and returns the concatenation of all fragments.
func (r *StreamReader) Collect() (string, error) {
	defer r.Close()
	var sb strings.Builder
	for {
		chunk, err := r.Recv()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
}

// StreamFromText returns a reader that replays the given text as a single
// fragment. Useful for models without native streaming support.
func StreamFromText(text string) *StreamReader {
	chunks := make(chan string, 1)
	chunks <- text
	close(chunks)
	return NewStreamReader(chunks, nil, nil)
}
