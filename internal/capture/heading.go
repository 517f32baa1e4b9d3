package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"pose-planner/internal/geometry"
	"pose-planner/internal/locale"
)

var (
	// ErrInvalidHeading is returned for input that is not a finite number of degrees.
	ErrInvalidHeading = errors.New("invalid heading")
	// ErrInputClosed is returned when the prompt input ends before a valid heading.
	ErrInputClosed = errors.New("heading input closed")
)

// ParseHeading parses a heading typed in degrees and returns it in radians.
func ParseHeading(text string) (float64, error) {
	deg, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidHeading, "%q", text)
	}
	if !geometry.IsFinite(deg) {
		return 0, errors.Wrapf(ErrInvalidHeading, "%q is not finite", text)
	}
	return geometry.DegToRad(deg), nil
}

// Prompter reads headings from a line-oriented console.
type Prompter struct {
	in       *bufio.Scanner
	out      io.Writer
	messages locale.Messages
}

// NewPrompter prompts on out and reads answers from in.
func NewPrompter(in io.Reader, out io.Writer, messages locale.Messages) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, messages: messages}
}

// ReadHeading blocks until a valid heading is entered and returns it in radians.
// Invalid lines are answered with a notice and the prompt is repeated, with no
// limit on retries.
func (p *Prompter) ReadHeading(ctx context.Context) (float64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprint(p.out, p.messages.EnterYaw)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, errors.Wrap(err, "reading heading")
			}
			return 0, ErrInputClosed
		}
		yaw, err := ParseHeading(p.in.Text())
		if err == nil {
			return yaw, nil
		}
		fmt.Fprintln(p.out, p.messages.InvalidNumber)
	}
}

// ReadLine reads one raw line, for drivers that share the prompt input with
// other commands.
func (p *Prompter) ReadLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}
