package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/userdeskio/api/pkg/apierror"
)

// maxDecompressedSize bounds how much a compressed body may expand to,
// guarding against decompression bombs.
const maxDecompressedSize = 10 << 20

// Decompress transparently inflates gzip- and zstd-encoded request bodies.
func Decompress() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding")))
			if encoding == "" || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			var (
				reader io.ReadCloser
				err    error
			)
			switch encoding {
			case "gzip":
				reader, err = newGzipBody(r.Body)
			case "zstd":
				reader, err = newZstdBody(r.Body)
			default:
				apierror.BadRequest("unsupported content encoding: " + encoding).WriteJSON(w)
				return
			}
			if err != nil {
				apierror.BadRequest("malformed compressed body").WriteJSON(w)
				return
			}
			defer reader.Close()

			r.Body = reader
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
			next.ServeHTTP(w, r)
		})
	}
}

// limitedBody caps decompressed reads and closes both the decoder and the
// underlying body.
type limitedBody struct {
	io.Reader
	closers []io.Closer
}

func (b *limitedBody) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newGzipBody(body io.ReadCloser) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return nil, err
	}
	return &limitedBody{
		Reader:  io.LimitReader(gz, maxDecompressedSize),
		closers: []io.Closer{gz, body},
	}, nil
}

type zstdCloser struct {
	decoder *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.decoder.Close()
	return nil
}

func newZstdBody(body io.ReadCloser) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(body, zstd.WithDecoderMaxMemory(maxDecompressedSize))
	if err != nil {
		body.Close()
		return nil, err
	}
	return &limitedBody{
		Reader:  io.LimitReader(dec, maxDecompressedSize),
		closers: []io.Closer{zstdCloser{dec}, body},
	}, nil
}
