/*
Package lsb is a library for hiding text messages in the least significant
bits of images and finding them again.

Messages are framed by package frame and carried by the red channel of each
pixel, see package carrier. Every image written by Hide is recorded in a small
ledger so that Scan can recognise it later.
*/
package lsb

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bodgit/lsb/carrier"
	"github.com/bodgit/lsb/frame"
	"github.com/bodgit/lsb/thumb"
)

// DefaultWorkers is the number of images Scan inspects concurrently.
const DefaultWorkers = 10

type LSB struct {
	db      *Ledger
	logger  *log.Logger
	workers int
}

// New returns an LSB using the ledger stored in file.
func New(file string, logger *log.Logger) (*LSB, error) {
	db, err := NewLedger(file)
	if err != nil {
		return nil, err
	}
	return &LSB{
		db:      db,
		logger:  logger,
		workers: DefaultWorkers,
	}, nil
}

// SetWorkers changes the number of Scan workers, values below one are
// ignored.
func (l *LSB) SetWorkers(n int) {
	if n > 0 {
		l.workers = n
	}
}

// Close closes the ledger.
func (l *LSB) Close() error {
	return l.db.Close()
}

// Ledger returns the underlying ledger.
func (l *LSB) Ledger() *Ledger {
	return l.db
}

func decodeFile(file string) (*carrier.Carrier, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, _, err := carrier.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return c, nil
}

// Capacity returns the longest message that can be hidden in the image.
func (l *LSB) Capacity(input string) (int, error) {
	c, err := decodeFile(input)
	if err != nil {
		return 0, err
	}
	return c.Capacity(), nil
}

// Hide writes a copy of the input image with message hidden in it to output.
// The output format is chosen from its extension.
func (l *LSB) Hide(input, output, message string) error {
	c, err := decodeFile(input)
	if err != nil {
		return err
	}

	if err := frame.Encode(c.Samples, message, c.Stride); err != nil {
		return err
	}

	b := new(bytes.Buffer)
	if err := carrier.Encode(b, c, carrier.FormatFromPath(output)); err != nil {
		return err
	}

	m, err := c.Image()
	if err != nil {
		return err
	}

	t := new(bytes.Buffer)
	if err := thumb.Encode(t, m); err != nil {
		return err
	}

	if err := ioutil.WriteFile(output, b.Bytes(), 0644); err != nil {
		return err
	}

	// Every image left on disk must be in the ledger
	length := utf8.RuneCountInString(message)
	sha := fmt.Sprintf("%X", sha1.Sum(b.Bytes()))
	if _, err := l.db.Record(Entry{
		SHA1:      sha,
		Name:      filepath.Base(output),
		Stride:    c.Stride,
		Length:    length,
		Thumbnail: t.Bytes(),
	}); err != nil {
		os.Remove(output)
		return err
	}

	l.logger.Printf("Hid %d characters in \"%s\", with SHA1 \"%s\"\n", length, output, sha)

	return nil
}

// Reveal returns the message hidden in the input image.
func (l *LSB) Reveal(input string) (string, error) {
	c, err := decodeFile(input)
	if err != nil {
		return "", err
	}

	length, err := frame.DecodeLength(c.Samples, c.Stride)
	if err != nil {
		return "", err
	}
	l.logger.Printf("Length prefix of \"%s\" is %d, capacity is %d\n", input, length, c.Capacity())

	return frame.DecodeMessage(c.Samples, int(length), c.Stride)
}
