// Command rcsgraph renders the delta-chain DAG of one or more RCS ,v files
// as a Graphviz DOT file (and, optionally, a rendered PNG), to help
// visualize the admin/branches/next structure parsed out of a file before
// trusting an import run to reconstruct it correctly.
package main

import (
	"fmt"
	"os"

	"github.com/emicklei/dot"
	"github.com/goccy/go-graphviz"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

var (
	inputFiles = kingpin.Arg(
		"rcsfile",
		"One or more ,v files to graph.",
	).Required().Strings()
	outputDot = kingpin.Flag(
		"output",
		"Graphviz DOT file to write.",
	).Short('o').Default("rcsgraph.dot").String()
	outputPNG = kingpin.Flag(
		"png",
		"Also render a PNG alongside the DOT file.",
	).String()
	debug = kingpin.Flag(
		"debug",
		"Enable debug logging.",
	).Bool()
)

func main() {
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version("rcsgraph 0.1.0").Author("cvsgitimport")
	kingpin.CommandLine.Help = "Renders the delta-chain DAG of RCS ,v files as a Graphviz DOT file.\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	g := dot.NewGraph(dot.Directed)
	for _, path := range *inputFiles {
		if err := addFileToGraph(g, path); err != nil {
			logger.Errorf("%s: %v", path, err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*outputDot, []byte(g.String()), 0644); err != nil {
		logger.Fatalf("failed to write %s: %v", *outputDot, err)
	}
	logger.Infof("wrote %s", *outputDot)

	if *outputPNG != "" {
		if err := renderPNG(g, *outputPNG); err != nil {
			logger.Fatalf("failed to render %s: %v", *outputPNG, err)
		}
		logger.Infof("wrote %s", *outputPNG)
	}
}

func addFileToGraph(g *dot.Graph, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := rcs.Parse(path, raw)
	if err != nil {
		return err
	}

	sub := g.Subgraph(path, dot.ClusterOption{})
	nodes := make(map[string]dot.Node)
	nodeFor := func(rev rcs.Revision) dot.Node {
		key := rev.String()
		if n, ok := nodes[key]; ok {
			return n
		}
		n := sub.Node(fmt.Sprintf("%s\n%s", path, key))
		nodes[key] = n
		return n
	}

	for _, rev := range f.Revisions() {
		d, ok := f.Deltas[rev.String()]
		if !ok {
			continue
		}
		n := nodeFor(rev)
		if !d.Next.IsZero() {
			sub.Edge(n, nodeFor(d.Next), "next")
		}
		for _, b := range d.Branches {
			sub.Edge(n, nodeFor(b), "branch")
		}
	}
	return nil
}

func renderPNG(g *dot.Graph, path string) error {
	gv := graphviz.New()
	defer gv.Close()
	graph, err := graphviz.ParseBytes([]byte(g.String()))
	if err != nil {
		return err
	}
	defer graph.Close()
	return gv.RenderFilename(graph, graphviz.PNG, path)
}
