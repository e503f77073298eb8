package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// prompter asks one question per line on a shared reader.
type prompter struct {
	r      *bufio.Reader
	out    io.Writer
	accent *color.Color
}

func newPrompter(in io.Reader, out io.Writer, noColor bool) *prompter {
	accent := color.New(color.FgCyan, color.Bold)
	if noColor {
		accent.DisableColor()
	}
	return &prompter{r: bufio.NewReader(in), out: out, accent: accent}
}

// ask prints question and returns the answer without its line ending. End
// of input counts as an empty answer.
func (p *prompter) ask(question string) (string, error) {
	p.accent.Fprint(p.out, question)
	line, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
