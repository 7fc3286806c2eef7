package sse

import (
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkedReader hands out its chunks one Read at a time, exactly as given.
type chunkedReader struct {
	chunks [][]byte
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func newChunkedReader(chunks ...string) *chunkedReader {
	r := &chunkedReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func readAll(r *Reader) ([]string, error) {
	var lines []string
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

// splitEvery partitions s into chunks of n bytes.
func splitEvery(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}

const openAIStream = "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
	"data: [DONE]\n\n"

var openAILines = []string{
	`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
	"",
	`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
	"",
	`data: {"choices":[{"delta":{"content":"lo"}}]}`,
	"",
	"data: [DONE]",
	"",
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("yields lines in order from a single chunk", func() {
			r := NewReader(strings.NewReader(openAIStream))

			lines, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal(openAILines))
		})

		It("returns io.EOF on empty input", func() {
			r := NewReader(strings.NewReader(""))

			_, err := r.Next()
			Expect(err).To(MatchError(io.EOF))
		})

		It("keeps returning io.EOF once exhausted", func() {
			r := NewReader(strings.NewReader("data: x\n"))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal("data: x"))

			_, err = r.Next()
			Expect(err).To(MatchError(io.EOF))
			_, err = r.Next()
			Expect(err).To(MatchError(io.EOF))
		})

		It("strips CRLF terminators", func() {
			r := NewReader(strings.NewReader("data: a\r\n\r\ndata: b\r\n"))

			lines, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]string{"data: a", "", "data: b"}))
		})

		It("propagates source errors", func() {
			boom := errors.New("connection reset")
			r := NewReader(iotest.ErrReader(boom))

			_, err := r.Next()
			Expect(err).To(MatchError(boom))
		})

		It("surfaces lines read before a source error", func() {
			boom := errors.New("connection reset")
			src := io.MultiReader(strings.NewReader("data: first\n"), iotest.ErrReader(boom))
			r := NewReader(src)

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal("data: first"))

			_, err = r.Next()
			Expect(err).To(MatchError(boom))
		})
	})

	Context("chunk boundary invariance", func() {
		It("yields the same lines for every fixed chunk size", func() {
			for size := 1; size <= len(openAIStream); size++ {
				r := NewReader(newChunkedReader(splitEvery(openAIStream, size)...))

				lines, err := readAll(r)
				Expect(err).NotTo(HaveOccurred(), "chunk size %d", size)
				Expect(lines).To(Equal(openAILines), "chunk size %d", size)
			}
		})

		It("yields the same lines when the reader's own chunk size is one byte", func() {
			r := NewReader(strings.NewReader(openAIStream), WithChunkSize(1))

			lines, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal(openAILines))
		})

		It("reassembles a line spanning three chunks", func() {
			r := NewReader(newChunkedReader("data: {\"cho", "ices\":[{\"delta\":{\"con", "tent\":\"x\"}}]}\n"))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal(`data: {"choices":[{"delta":{"content":"x"}}]}`))
		})

		It("tolerates empty chunks", func() {
			r := NewReader(newChunkedReader("", "data: a", "", "\n", ""))

			lines, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]string{"data: a"}))
		})

		It("reassembles a multi-byte rune split across chunks", func() {
			payload := "data: héllo 世界\n"
			// Split inside the three-byte encoding of 世.
			cut := strings.Index(payload, "世") + 1
			r := NewReader(newChunkedReader(payload[:cut], payload[cut:]))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal("data: héllo 世界"))
		})
	})

	Context("unterminated trailing line", func() {
		It("drops it and reports its size", func() {
			r := NewReader(strings.NewReader("data: a\ndata: partial"))

			lines, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]string{"data: a"}))
			Expect(r.Discarded()).To(Equal(len("data: partial")))
		})

		It("reports nothing discarded for a terminated stream", func() {
			r := NewReader(strings.NewReader("data: a\n"))

			_, err := readAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Discarded()).To(BeZero())
		})
	})

	Context("invalid encoding", func() {
		It("fails with ErrInvalidEncoding", func() {
			r := NewReader(strings.NewReader("data: ok\ndata: \xff\xfe\n"))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal("data: ok"))

			_, err = r.Next()
			Expect(err).To(MatchError(ErrInvalidEncoding))
		})
	})

	Describe("Close", func() {
		It("discards buffered bytes and refuses further reads", func() {
			r := NewReader(newChunkedReader("data: a\ndata: b", "\n"), WithChunkSize(64))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(Equal("data: a"))

			r.Close()
			_, err = r.Next()
			Expect(err).To(MatchError(ErrClosed))
			Expect(err).NotTo(MatchError(io.EOF))
			_, err = r.Next()
			Expect(err).To(MatchError(ErrClosed))
		})

		It("keeps refusing reads after the source ended", func() {
			r := NewReader(strings.NewReader("data: a\n"))
			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			_, err = r.Next()
			Expect(err).To(MatchError(io.EOF))

			r.Close()
			_, err = r.Next()
			Expect(err).To(MatchError(ErrClosed))
		})
	})
})
