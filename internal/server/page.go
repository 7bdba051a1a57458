package server

import (
	"bytes"
	"html/template"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// choice is one radio button of the fact form
type choice struct {
	Value   string
	Label   string
	Checked bool
}

// group is one radio group of the fact form
type group struct {
	Field   string
	Legend  string
	Choices []choice
}

type pageData struct {
	Facts    facts.Facts
	Groups   []group
	Prev     string
	Graph    template.HTML
	Relevant int
	Total    int
}

var legends = map[facts.Field]string{
	facts.FieldArrestingPerson: "Who is making the arrest?",
	facts.FieldWarrant:         "Is there a warrant?",
	facts.FieldOffenceCategory: "What kind of offence?",
}

var choiceLabels = map[facts.Field]map[string]string{
	facts.FieldArrestingPerson: {
		string(facts.PersonCitizen): "Citizen",
		string(facts.PersonPolice):  "Police officer",
	},
	facts.FieldWarrant: {
		facts.WarrantYes.String(): "Yes",
		facts.WarrantNo.String():  "No",
	},
	facts.FieldOffenceCategory: {
		string(facts.CategorySummary):         "Summary conviction",
		string(facts.CategoryHybrid):          "Hybrid",
		string(facts.CategoryS553):            "s. 553",
		string(facts.CategoryIndictableShort): "Indictable, five years or less",
		string(facts.CategoryIndictableLong):  "Indictable, more than five years",
		string(facts.CategoryS469):            "s. 469",
	},
}

// formGroups lays out the three radio groups with the current facts checked
func formGroups(f facts.Facts) []group {
	groups := make([]group, 0, len(facts.Fields()))
	for _, field := range facts.Fields() {
		g := group{Field: string(field), Legend: legends[field]}
		current := f.Value(field)
		for _, tok := range field.Tokens() {
			label := choiceLabels[field][tok]
			if label == "" {
				label = tok
			}
			g.Choices = append(g.Choices, choice{Value: tok, Label: label, Checked: tok == current})
		}
		groups = append(groups, g)
	}
	return groups
}

// inlineSVG strips the XML prolog graphviz emits so the document can sit
// inside HTML
func inlineSVG(svg []byte) template.HTML {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg)
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Arrest and release</title>
<style>
body { font-family: sans-serif; margin: 1.5em; }
form#facts { display: flex; gap: 2em; flex-wrap: wrap; }
fieldset { border: 1px solid #ccc; }
.summary { color: #666; margin: 0.5em 0; }
#graph svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<form id="facts" method="get" action="/click">
<input type="hidden" name="prev" value="{{.Prev}}">
<input type="hidden" name="field" value="">
<input type="hidden" name="value" value="">
{{range .Groups}}{{$field := .Field}}<fieldset>
<legend>{{.Legend}}</legend>
{{range .Choices}}<label><input type="radio" name="{{$field}}" value="{{.Value}}"{{if .Checked}} checked{{end}} onclick="pick(this)"> {{.Label}}</label><br>
{{end}}</fieldset>
{{end}}<noscript><button type="submit">Apply</button></noscript>
</form>
<p class="summary">{{.Relevant}} of {{.Total}} steps apply. <a href="/">Start over</a></p>
<div id="graph">{{.Graph}}</div>
<script>
function pick(input) {
  var form = document.getElementById("facts");
  form.elements["field"].value = input.name;
  form.elements["value"].value = input.value;
  form.submit();
}
</script>
</body>
</html>
`))
