// Package corpus reads and writes dependency-parsed sentences in CoNLL-U
// form and exports sparse instances for external learners.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Comment keys recognised in sentence headers.
const (
	FocusComment = "focus"
	LabelComment = "label"
)

// NoFocus marks a sentence without a focus comment.
const NoFocus = -1

// miscKeys are the token features written to the MISC column, in order.
var miscKeys = []string{nlp.Predicate, nlp.Gold, nlp.Sense}

// Sentence is one parsed CoNLL-U block.
type Sentence struct {
	Tree  *nlp.Tree
	Focus int
	Label string
}

// ReadSentences parses every sentence in r. Malformed sentences are logged
// and skipped; only read errors are returned.
func ReadSentences(r io.Reader) ([]Sentence, error) {
	var (
		out   []Sentence
		block []string
		start int
		line  int
	)

	flush := func() {
		if len(block) == 0 {
			return
		}
		s, err := parseSentence(block)
		if err != nil {
			log.Printf("Warning: skipping malformed sentence at line %d: %v", start, err)
		} else {
			out = append(out, s)
		}
		block = block[:0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			flush()
			continue
		}
		if len(block) == 0 {
			start = line
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read conll: %w", err)
	}
	flush()
	return out, nil
}

// ReadCoNLL returns a focus instance for every sentence carrying a focus
// comment. Instance ids are sequential in file order.
func ReadCoNLL(r io.Reader) ([]*nlp.Focus, error) {
	sentences, err := ReadSentences(r)
	if err != nil {
		return nil, err
	}
	return Foci(sentences), nil
}

// Foci returns a labelled focus instance for every sentence with a focus.
func Foci(sentences []Sentence) []*nlp.Focus {
	var foci []*nlp.Focus
	for _, s := range sentences {
		if s.Focus == NoFocus {
			continue
		}
		f := nlp.NewFocus(len(foci), s.Tree, s.Focus)
		if s.Label != "" {
			f.SetLabel(s.Label)
		}
		foci = append(foci, f)
	}
	return foci
}

func parseSentence(lines []string) (Sentence, error) {
	s := Sentence{Focus: NoFocus}
	b := nlp.NewTreeBuilder()
	var heads []int

	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			key, value, ok := strings.Cut(strings.TrimPrefix(line, "#"), "=")
			if !ok {
				continue
			}
			switch strings.TrimSpace(key) {
			case FocusComment:
				n, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil {
					return s, fmt.Errorf("%w: focus %q", internalerr.ErrInvalidInput, value)
				}
				s.Focus = n
			case LabelComment:
				s.Label = strings.TrimSpace(value)
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			return s, fmt.Errorf("%w: expected at least 8 columns, got %d", internalerr.ErrInvalidInput, len(fields))
		}
		// multiword ranges and empty nodes
		if strings.Contains(fields[0], "-") || strings.Contains(fields[0], ".") {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id != len(heads)+1 {
			return s, fmt.Errorf("%w: token id %q out of sequence", internalerr.ErrInvalidInput, fields[0])
		}
		head, err := strconv.Atoi(fields[6])
		if err != nil || head < 0 {
			return s, fmt.Errorf("%w: head %q", internalerr.ErrInvalidInput, fields[6])
		}

		features := map[string]any{}
		setColumn(features, nlp.Text, fields[1])
		setColumn(features, nlp.Lemma, fields[2])
		setColumn(features, nlp.Pos, fields[3])
		setColumn(features, nlp.Tag, fields[4])
		setColumn(features, nlp.Dep, fields[7])
		if len(fields) > 9 {
			for _, kv := range strings.Split(fields[9], "|") {
				if k, v, ok := strings.Cut(kv, "="); ok {
					setColumn(features, k, v)
				}
			}
		}
		b.Add(features)
		// CoNLL heads are 1-based with 0 for the root
		heads = append(heads, head-1)
	}

	if len(heads) == 0 {
		return s, fmt.Errorf("%w: no tokens", internalerr.ErrInvalidInput)
	}
	for i, h := range heads {
		b.SetHead(i, h)
	}
	tree, err := b.Build()
	if err != nil {
		return s, err
	}
	if s.Focus != NoFocus && (s.Focus < 0 || s.Focus >= tree.Len()) {
		return s, fmt.Errorf("%w: focus %d outside sentence of %d tokens", internalerr.ErrInvalidInput, s.Focus, tree.Len())
	}
	s.Tree = tree
	return s, nil
}

func setColumn(features map[string]any, key, value string) {
	if value == "" || value == "_" {
		return
	}
	features[key] = value
}

// WriteSentences writes sentences in CoNLL-U form.
func WriteSentences(w io.Writer, sentences []Sentence) error {
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		if s.Focus != NoFocus {
			fmt.Fprintf(bw, "# %s = %d\n", FocusComment, s.Focus)
		}
		if s.Label != "" {
			fmt.Fprintf(bw, "# %s = %s\n", LabelComment, s.Label)
		}
		for _, tok := range s.Tree.Tokens() {
			head, ok := s.Tree.Head(tok.Index())
			headCol := 0
			if ok {
				headCol = head + 1
			}
			fmt.Fprintf(bw, "%d\t%s\t%s\t%s\t%s\t_\t%d\t%s\t_\t%s\n",
				tok.Index()+1,
				column(tok, nlp.Text),
				column(tok, nlp.Lemma),
				column(tok, nlp.Pos),
				column(tok, nlp.Tag),
				headCol,
				column(tok, nlp.Dep),
				misc(tok),
			)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteCoNLL writes one sentence per focus instance with focus and label
// comments, so ReadCoNLL reproduces the instances.
func WriteCoNLL(w io.Writer, foci []*nlp.Focus) error {
	sentences := make([]Sentence, len(foci))
	for i, f := range foci {
		sentences[i] = Sentence{Tree: f.Tree, Focus: f.Index, Label: f.Label()}
	}
	return WriteSentences(w, sentences)
}

func column(tok *nlp.Token, key string) string {
	if v, ok := tok.StringFeature(key); ok {
		return v
	}
	return "_"
}

func misc(tok *nlp.Token) string {
	var parts []string
	for _, key := range miscKeys {
		if v, ok := tok.StringFeature(key); ok {
			parts = append(parts, key+"="+v)
		}
	}
	if len(parts) == 0 {
		return "_"
	}
	return strings.Join(parts, "|")
}
