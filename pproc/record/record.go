package record

import (
	"bufio"
	"bytes"
	"errors"
)

var (
	ErrIncompleteElement = errors.New("incomplete element at end of input")
	ErrInvalidSplitter   = errors.New("invalid splitter")
	errInvalidSplitFunc  = func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		return 0, nil, ErrInvalidSplitter
	}
)

// ElementSplitter returns a split function for a bufio.Scanner that yields
// up to n consecutive elements of the given name per token, from the first
// start tag to the last end tag. Anything before the first and after the last
// element, like the document root, is dropped. Elements must not nest.
//
// The scanner buffer limits the size of a token, an element larger than the
// limit results in bufio.ErrTooLong.
func ElementSplitter(tagName string, n int) bufio.SplitFunc {
	if len(tagName) == 0 || n < 1 {
		return errInvalidSplitFunc
	}
	var (
		openTag  = []byte("<" + tagName)
		closeTag = []byte("</" + tagName + ">")
	)
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		start := indexStartTag(data, openTag, 0)
		if start == -1 {
			if atEOF {
				return len(data), nil, nil
			}
			// Keep a tail that could hold the beginning of a start tag.
			if k := len(data) - len(openTag); k > 0 {
				return k, nil, nil
			}
			return 0, nil, nil
		}
		var (
			end   = start
			count int
		)
		for count < n {
			i := bytes.Index(data[end:], closeTag)
			if i == -1 {
				break
			}
			end += i + len(closeTag)
			count++
		}
		switch {
		case count == n:
			return end, data[start:end], nil
		case !atEOF:
			return start, nil, nil
		case count == 0:
			return 0, nil, ErrIncompleteElement
		}
		// At the end, the last start tag must have been closed.
		if indexStartTag(data, openTag, end) != -1 {
			return 0, nil, ErrIncompleteElement
		}
		return len(data), data[start:end], nil
	}
}

// indexStartTag returns the index of the first start tag at or after offset,
// or -1. A start tag at the very end of data counts, since the next byte is
// not yet known.
func indexStartTag(data, openTag []byte, offset int) int {
	for offset < len(data) {
		i := bytes.Index(data[offset:], openTag)
		if i == -1 {
			return -1
		}
		i += offset
		if k := i + len(openTag); k == len(data) || isValidTagTerminator(data[k]) {
			return i
		}
		offset = i + 1
	}
	return -1
}

func isValidTagTerminator(ch byte) bool {
	switch ch {
	case '>', ' ', '/', '\n', '\t', '\r':
		return true
	}
	return false
}

// WrapElements wraps a token from ElementSplitter into a root element, so it
// can be decoded as a standalone document.
func WrapElements(root string, token []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(token) + 2*len(root) + 5)
	buf.WriteString("<" + root + ">")
	buf.Write(token)
	buf.WriteString("</" + root + ">")
	return buf.Bytes()
}
