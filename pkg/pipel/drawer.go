package pipel

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/jordiae/pipel/internal/store"
)

// drawer renders the stage graph of a pipeline to an SVG-embeddable DOT
// file. When measured durations are available, stages are coloured on a
// green-to-red scale relative to the slowest stage.
type drawer struct {
	svgFileName string
	store       store.CustomStore[string, string]
	graph       graph.Graph[string, string]
}

func newDrawer(svgFileName string) *drawer {
	st := store.NewMemoryStore[string, string]()

	return &drawer{
		svgFileName: svgFileName,
		store:       st,
		graph:       graph.NewWithStore(graph.StringHash, st, graph.Directed()),
	}
}

func (d *drawer) addStage(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

func (d *drawer) addLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

const maxRGB = 240

// setElapsed labels a stage with its average duration and colours it
// relative to the slowest stage of the run.
func (d *drawer) setElapsed(name string, elapsed, slowest time.Duration) error {
	if slowest == 0 {
		return nil
	}
	ratio := float64(elapsed) / float64(slowest)
	heat, err := colors.RGB(uint8(maxRGB*ratio), uint8(maxRGB*(1-ratio)), 0)
	if err != nil {
		return errors.Wrap(err, "unable to build colour")
	}

	d.store.UpdateVertex(name, func(props *graph.VertexProperties) {
		if props.Attributes == nil {
			props.Attributes = map[string]string{}
		}
		props.Attributes["xlabel"] = elapsed.String()
		props.Attributes["style"] = "filled"
		props.Attributes["fillcolor"] = heat.ToHEX().String()
	})

	return nil
}

func (d *drawer) draw() error {
	file, err := os.Create(d.svgFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.svgFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.svgFileName)
	}

	return nil
}

const dotTemplate = `strict {{.GraphType}} {
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceWeight     int
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], w io.Writer) error {
	desc, err := generateDOT(g)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(w, desc)
}

func generateDOT[K comparable, T any](g graph.Graph[K, T]) (description, error) {
	desc := description{
		GraphType:    "graph",
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	if g.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := g.AdjacencyMap()
	if err != nil {
		return desc, err
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := g.VertexWithProperties(vertex)
		if err != nil {
			return desc, err
		}
		htmlAttributes := make(map[string]string)
		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
			delete(sourceProperties.Attributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		})

		for adjacency, edge := range adjacencies {
			desc.Statements = append(desc.Statements, statement{
				Source:     vertex,
				Target:     adjacency,
				EdgeWeight: edge.Properties.Weight,
			})
		}
	}

	return desc, nil
}

func renderDOT(w io.Writer, d description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	return tpl.Execute(w, d)
}
