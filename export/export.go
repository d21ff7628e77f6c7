// Package export writes the address table of a SoC in the formats that the
// firmware and the host tools read.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/sarchlab/upsilonsoc/regmap"
	"github.com/sarchlab/upsilonsoc/soc"
)

// WriteJSON writes the whole table as an indented JSON document.
func WriteJSON(w io.Writer, t *soc.Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	if _, err = w.Write(data); err != nil {
		return err
	}

	_, err = io.WriteString(w, "\n")

	return err
}

var funcs = template.FuncMap{
	"hex":    func(v uint64) string { return fmt.Sprintf("0x%08x", v) },
	"pydict": pythonDict,
}

// pythonDict formats a register table as a Python dict literal that maps
// each register to its offset, width and permission.
func pythonDict(rows regmap.Table) string {
	items := make([]string, 0, len(rows))
	for _, r := range rows {
		rw := "False"
		if r.Permission == regmap.ReadWrite {
			rw = "True"
		}

		items = append(items, fmt.Sprintf(
			"'%s': {'origin': %d, 'width': %d, 'rw': %s}",
			r.Name, r.Offset, r.Width, rw))
	}

	return "{" + strings.Join(items, ", ") + "}"
}

const headerText = `/* Address map of the {{.Space}} space. Generated, do not edit. */
#ifndef {{.Guard}}
#define {{.Guard}}
{{range .Symbols}}
#define {{.Name}} {{hex .Value}}UL{{end}}

#endif /* {{.Guard}} */
`

const micropythonText = `from micropython import const
{{range .Symbols}}
{{.Name}} = const({{.Value}}){{end}}
{{range .Subregions}}{{if .Registers}}
{{.Name}} = {{pydict .Registers}}{{end}}{{end}}
`

var (
	headerTemplate = template.Must(
		template.New("header").Funcs(funcs).Parse(headerText))
	micropythonTemplate = template.Must(
		template.New("micropython").Funcs(funcs).Parse(micropythonText))
)

type headerData struct {
	Space   string
	Guard   string
	Symbols []soc.Symbol
}

// WriteCHeader writes the symbols of one space as C preprocessor defines.
func WriteCHeader(w io.Writer, t *soc.Table, space string) error {
	symbols := t.SymbolsOf(space)
	if len(symbols) == 0 {
		return fmt.Errorf("the table has no space named %q", space)
	}

	return headerTemplate.Execute(w, headerData{
		Space:   space,
		Guard:   strings.ToUpper(space) + "_MMIO_H",
		Symbols: symbols,
	})
}

type micropythonData struct {
	Symbols    []soc.Symbol
	Subregions []soc.Subregion
}

// WriteMicroPython writes the symbols of the host space as a MicroPython
// module of const() values. Each subregion that wraps a register map also
// gets a dict that describes its registers.
func WriteMicroPython(w io.Writer, t *soc.Table) error {
	subregions := []soc.Subregion{}
	for _, s := range t.Subregions {
		if s.Space == soc.HostSpace {
			subregions = append(subregions, s)
		}
	}

	return micropythonTemplate.Execute(w, micropythonData{
		Symbols:    t.SymbolsOf(soc.HostSpace),
		Subregions: subregions,
	})
}
