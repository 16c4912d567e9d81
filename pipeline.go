package lsb

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/bodgit/lsb/carrier"
	"github.com/bodgit/lsb/frame"
)

// Finding describes an image that appears to carry a message.
type Finding struct {
	Path    string
	SHA1    string
	Known   bool // Recorded in the ledger
	Stride  int
	Length  int
	Message string
}

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".bmp", ".gif":
		return true
	}
	return false
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (l *LSB) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isImage(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (l *LSB) inspect(file string) (*Finding, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha1.New()
	c, _, err := carrier.Decode(io.TeeReader(f, h))
	if err != nil {
		l.logger.Printf("Skipping \"%s\": %v\n", file, err)
		return nil, nil
	}
	// The decoder may stop short of the end of the file
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	e, err := l.db.FindBySHA1(sha)
	if err != nil {
		return nil, err
	}

	length, err := frame.DecodeLength(c.Samples, c.Stride)
	if err != nil || (e == nil && (length == 0 || int(length) > c.Capacity())) {
		return nil, nil
	}

	message, err := frame.DecodeMessage(c.Samples, int(length), c.Stride)
	if err != nil {
		return nil, nil
	}

	if e == nil && !printable(message) {
		return nil, nil
	}

	return &Finding{
		Path:    file,
		SHA1:    sha,
		Known:   e != nil,
		Stride:  c.Stride,
		Length:  int(length),
		Message: message,
	}, nil
}

func (l *LSB) imageWorker(ctx context.Context, in <-chan string, out chan<- Finding) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			finding, err := l.inspect(file)
			if err != nil {
				errc <- err
				return
			}

			if finding == nil {
				continue
			}

			l.logger.Printf("Found %d characters in \"%s\"\n", finding.Length, file)

			select {
			case out <- *finding:
			case <-ctx.Done():
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path looking for images that carry a message, either because
// they are in the ledger or because their length prefix decodes to a
// plausible, printable message. Findings are sorted by path.
func (l *LSB) Scan(path string) ([]Finding, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := l.findImages(ctx, dir)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	results := make(chan Finding)
	var findings []Finding
	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range results {
			findings = append(findings, f)
		}
	}()

	for i := 0; i < l.workers; i++ {
		errc, _ := l.imageWorker(ctx, files, results)
		errcList = append(errcList, errc)
	}

	err = waitForPipeline(errcList...)

	// waitForPipeline stops at the first error, so cancel and wait for the
	// walker and every worker to return before closing results
	cancelFunc()
	for _, errc := range errcList {
		for range errc {
		}
	}
	close(results)
	<-done

	if err != nil {
		return nil, err
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].Path < findings[j].Path })

	return findings, nil
}
