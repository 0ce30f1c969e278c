package model

import "fmt"

// BinarizerSpec is the on-disk label list, in estimator output order.
type BinarizerSpec struct {
	Classes []string `json:"classes"`
}

// Binarizer maps estimator output positions to tag labels.
type Binarizer struct {
	classes []string
	index   map[string]int
}

func NewBinarizer(classes []string) (*Binarizer, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("no classes")
	}

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("class %d is empty", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}

	return &Binarizer{classes: append([]string(nil), classes...), index: index}, nil
}

func (b *Binarizer) Len() int {
	return len(b.classes)
}

func (b *Binarizer) Label(i int) string {
	return b.classes[i]
}

func (b *Binarizer) Contains(label string) bool {
	_, ok := b.index[label]
	return ok
}

// Classes returns a copy of the label vocabulary.
func (b *Binarizer) Classes() []string {
	return append([]string(nil), b.classes...)
}
