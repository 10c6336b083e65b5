package synchronizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Prompter writes questions to an operator and reads line-based answers.
// One Prompter should own a given input stream so buffered input is not lost.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter wraps the provided streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if out == nil {
		out = io.Discard
	}
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Printf writes informational text to the operator.
func (p *Prompter) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// Ask writes prompt and returns the next input line without its line ending.
// A final unterminated line is returned as-is; io.EOF is returned only when no
// input remained.
func (p *Prompter) Ask(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptChar asks question until the first character of the answer is one of
// choices (case-insensitive). An empty answer selects def. The chosen rune is
// returned in lower case.
func (p *Prompter) PromptChar(question string, choices string, def rune) (rune, error) {
	choices = strings.ToLower(choices)
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return 0, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return unicode.ToLower(def), nil
		}
		r, _ := utf8.DecodeRuneInString(answer)
		r = unicode.ToLower(r)
		if strings.ContainsRune(choices, r) {
			return r, nil
		}
		p.Printf("Please answer one of [%s].\n", choices)
	}
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint, defRune := "[y/N]", 'n'
	if def {
		hint, defRune = "[Y/n]", 'y'
	}
	r, err := p.PromptChar(question+" "+hint+" ", "yn", defRune)
	if err != nil {
		return false, err
	}
	return r == 'y', nil
}
