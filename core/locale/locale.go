/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package locale resolves the user-facing texts of the grid core for a
// language. Only the keys the core itself renders are known.
package locale

import (
	"errors"
	"fmt"
	"maps"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownKey is returned by Texts.Text for keys without a translation.
var ErrUnknownKey = errors.New("unknown locale text key")

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.French,
	language.German,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"aggregationFunctionLabelSum":  "sum",
		"aggregationFunctionLabelAvg":  "avg",
		"aggregationFunctionLabelMin":  "min",
		"aggregationFunctionLabelMax":  "max",
		"aggregationFunctionLabelSize": "size",
		"noRowsLabel":                  "No rows",
		"footerTotalRows":              "Total Rows:",
		"groupingColumnHeaderName":     "Group",
	},
	language.French: {
		"aggregationFunctionLabelSum":  "somme",
		"aggregationFunctionLabelAvg":  "moyenne",
		"aggregationFunctionLabelMin":  "minimum",
		"aggregationFunctionLabelMax":  "maximum",
		"aggregationFunctionLabelSize": "taille",
		"noRowsLabel":                  "Pas de résultats",
		"footerTotalRows":              "Lignes totales :",
		"groupingColumnHeaderName":     "Groupe",
	},
	language.German: {
		"aggregationFunctionLabelSum":  "Summe",
		"aggregationFunctionLabelAvg":  "Durchschnitt",
		"aggregationFunctionLabelMin":  "Minimum",
		"aggregationFunctionLabelMax":  "Maximum",
		"aggregationFunctionLabelSize": "Anzahl",
		"noRowsLabel":                  "Keine Einträge",
		"footerTotalRows":              "Gesamt:",
		"groupingColumnHeaderName":     "Gruppe",
	},
}

// Texts is the text table of one language.
type Texts struct {
	tag   language.Tag
	texts map[string]string
}

// ForLanguage returns the texts of the supported language closest to lang,
// which is a BCP 47 tag or an Accept-Language value. Unknown languages get
// English.
func ForLanguage(lang string) *Texts {
	_, index := language.MatchStrings(matcher, lang)
	tag := supported[index]
	return &Texts{tag: tag, texts: catalogs[tag]}
}

// Tag returns the language of the table.
func (t *Texts) Tag() language.Tag {
	return t.tag
}

// With returns a copy of t where overrides replace or add texts.
func (t *Texts) With(overrides map[string]string) *Texts {
	texts := maps.Clone(t.texts)
	if texts == nil {
		texts = make(map[string]string, len(overrides))
	}
	maps.Copy(texts, overrides)
	return &Texts{tag: t.tag, texts: texts}
}

// Text returns the text for key.
func (t *Texts) Text(key string) (string, error) {
	if t != nil {
		if s, ok := t.texts[key]; ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Capitalize upper-cases the first letter of each word and leaves the rest
// untouched: "dateTime" becomes "DateTime".
func Capitalize(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}
