package handler

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// LineConn is the newline-delimited transport a session talks over.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
}

type lineConn struct {
	scanner *bufio.Scanner
	w       io.Writer
	// beforeRead arms the idle deadline, nil when sessions never time out.
	beforeRead func() error
}

// NewLineConn wraps a reader and writer pair, mostly useful for tests.
func NewLineConn(r io.Reader, w io.Writer) LineConn {
	return &lineConn{scanner: bufio.NewScanner(r), w: w}
}

func newNetLineConn(conn net.Conn, idleTimeout time.Duration) LineConn {
	lc := &lineConn{scanner: bufio.NewScanner(conn), w: conn}
	if idleTimeout > 0 {
		lc.beforeRead = func() error {
			return conn.SetReadDeadline(time.Now().Add(idleTimeout))
		}
	}
	return lc
}

func (c *lineConn) ReadLine() (string, error) {
	if c.beforeRead != nil {
		if err := c.beforeRead(); err != nil {
			return "", err
		}
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
}

func (c *lineConn) WriteLine(line string) error {
	_, err := fmt.Fprintln(c.w, line)
	return err
}
