package deaddrop

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// chunkWindow is the fixed plaintext window size per encrypted chunk.
const chunkWindow = 4 * 1024 * 1024

// encryptStream reads plaintext from src in chunkWindow windows and writes
// framed, AEAD-sealed chunks to dst: u32_le(len) || nonce(12) || ct || tag(16).
// A fresh nonce is drawn for every chunk.
func encryptStream(dst io.Writer, src io.Reader, key []byte) error {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("deaddrop: build aead: %w", err)
	}

	buf := make([]byte, chunkWindow)
	lenPrefix := make([]byte, 4)
	wroteAny := false
	for {
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			nonce := make([]byte, chacha20poly1305.NonceSize)
			if _, err := rand.Read(nonce); err != nil {
				return fmt.Errorf("deaddrop: draw nonce: %w", err)
			}
			ct := aead.Seal(nil, nonce, buf[:n], nil)

			binary.LittleEndian.PutUint32(lenPrefix, uint32(len(ct)))
			if _, err := dst.Write(lenPrefix); err != nil {
				return fmt.Errorf("deaddrop: write chunk length: %w", err)
			}
			if _, err := dst.Write(nonce); err != nil {
				return fmt.Errorf("deaddrop: write chunk nonce: %w", err)
			}
			if _, err := dst.Write(ct); err != nil {
				return fmt.Errorf("deaddrop: write chunk ciphertext: %w", err)
			}
			wroteAny = true
		}
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("deaddrop: read plaintext window: %w", readErr)
		}
	}

	// A zero-length input still produces one (empty) chunk so decryption
	// has something to open.
	if !wroteAny {
		nonce := make([]byte, chacha20poly1305.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("deaddrop: draw nonce: %w", err)
		}
		ct := aead.Seal(nil, nonce, nil, nil)
		binary.LittleEndian.PutUint32(lenPrefix, uint32(len(ct)))
		if _, err := dst.Write(lenPrefix); err != nil {
			return err
		}
		if _, err := dst.Write(nonce); err != nil {
			return err
		}
		if _, err := dst.Write(ct); err != nil {
			return err
		}
	}
	return nil
}

// decryptStream is an io.Reader that lazily decrypts chunks framed by
// encryptStream as they are consumed.
type decryptStream struct {
	src     io.Reader
	aead    interface {
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
	pending []byte
	err     error
	done    bool
}

func newDecryptStream(src io.Reader, key []byte) (*decryptStream, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("deaddrop: build aead: %w", err)
	}
	return &decryptStream{src: src, aead: aead}, nil
}

func (d *decryptStream) Read(p []byte) (int, error) {
	for len(d.pending) == 0 {
		if d.err != nil {
			return 0, d.err
		}
		if d.done {
			return 0, io.EOF
		}
		if err := d.fillNext(); err != nil {
			d.err = err
			continue
		}
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *decryptStream) fillNext() error {
	lenPrefix := make([]byte, 4)
	_, err := io.ReadFull(d.src, lenPrefix)
	if err == io.EOF {
		d.done = true
		return nil
	}
	if err != nil {
		return ErrMalformedStream
	}
	ctLen := binaryLittleEndianUint32(lenPrefix)

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(d.src, nonce); err != nil {
		return ErrMalformedStream
	}
	ct := make([]byte, ctLen)
	if _, err := io.ReadFull(d.src, ct); err != nil {
		return ErrMalformedStream
	}

	plain, err := d.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return ErrAuthFailure
	}
	d.pending = plain
	return nil
}

func binaryLittleEndianUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
