// Package law holds the static reference data a query is built from:
// the Indian legal codes a user can select, the audience tiers, the
// query focuses and the supported output languages.
package law

import (
	"errors"
	"strings"
)

// ErrUnknownLaw is returned when an identifier is not in the catalogue.
var ErrUnknownLaw = errors.New("law: unknown legal code")

// Law identifies one statutory code.
type Law string

// Supported legal codes.
const (
	CPC   Law = "CPC"
	BNS   Law = "BNS"
	BNSS  Law = "BNSS"
	BSA   Law = "BSA"
	NI    Law = "NI"
	HMA   Law = "HMA"
	MVA   Law = "MVA"
	DV    Law = "DV"
	MWPSC Law = "MWPSC"
)

// Option describes a legal code for display and prompting.
type Option struct {
	ID       Law    `json:"id"`
	Name     string `json:"name"`      // short display abbreviation
	FullName string `json:"full_name"` // descriptive title used in prompts
}

var catalogue = []Option{
	{ID: CPC, Name: "CPC", FullName: "Code of Civil Procedure, 1908"},
	{ID: BNS, Name: "BNS", FullName: "Bharatiya Nyaya Sanhita, 2023"},
	{ID: BNSS, Name: "BNSS", FullName: "Bharatiya Nagarik Suraksha Sanhita, 2023"},
	{ID: BSA, Name: "BSA", FullName: "Bharatiya Sakshya Adhiniyam, 2023"},
	{ID: NI, Name: "NI Act", FullName: "Negotiable Instruments Act, 1881"},
	{ID: HMA, Name: "HM Act", FullName: "Hindu Marriage Act, 1955"},
	{ID: MVA, Name: "MV Act", FullName: "Motor Vehicles Act, 1988"},
	{ID: DV, Name: "DV Act", FullName: "Protection of Women from Domestic Violence Act, 2005"},
	{ID: MWPSC, Name: "MWPSC Act", FullName: "Maintenance and Welfare of Parents and Senior Citizens Act, 2007"},
}

// Laws returns the catalogue in display order. The slice is a copy.
func Laws() []Option {
	out := make([]Option, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup resolves an identifier (case-insensitive) to its catalogue entry.
func Lookup(id string) (Option, error) {
	for _, opt := range catalogue {
		if strings.EqualFold(string(opt.ID), strings.TrimSpace(id)) {
			return opt, nil
		}
	}
	return Option{}, ErrUnknownLaw
}

// FullName returns the descriptive title of l, or the raw identifier when
// l is not in the catalogue.
func (l Law) FullName() string {
	if opt, err := Lookup(string(l)); err == nil {
		return opt.FullName
	}
	return string(l)
}

// Valid reports whether l is in the catalogue.
func (l Law) Valid() bool {
	_, err := Lookup(string(l))
	return err == nil
}
