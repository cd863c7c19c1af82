package main

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// payeeSubstitutions maps the noisy counterparty strings banks emit to the
// stable names the rule table matches on. Loaded from payees.yaml in the
// config directory; a missing file just means no substitutions.
type payeeSubstitutions map[string]string

func loadPayeeSubstitutions(path string) (payeeSubstitutions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return payeeSubstitutions{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %v", path)
	}
	subst := payeeSubstitutions{}
	if err := yaml.Unmarshal(data, &subst); err != nil {
		return nil, errors.Wrapf(err, "unable to parse payee substitutions at %v", path)
	}
	return subst, nil
}

// apply rewrites counterparty names in place, before classification, and
// returns how many transactions were touched.
func (ps payeeSubstitutions) apply(txns []Txn) int {
	var n int
	for i := range txns {
		if replacement, has := ps[txns[i].Name]; has {
			txns[i].Name = replacement
			n++
		}
	}
	return n
}
