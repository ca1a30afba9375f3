// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/model"
	"github.com/venicegeo/bf-gibs-explorer/timeextent"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
)

// maxParallelTemplates bounds concurrent GetMap requests for template --all
const maxParallelTemplates = 4

func withSession(c *cli.Context, minArgs int, fn func(context.Context, *session, cli.Args) error) error {
	args := c.Args()
	if len(args) < minArgs {
		return cli.NewExitError(fmt.Sprintf("%s needs %d argument(s): %s", c.Command.Name, minArgs, c.Command.ArgsUsage), 2)
	}
	ctx := context.Background()
	s, err := loadSessionFunc(ctx, &util.BasicLogContext{})
	if err != nil {
		return err
	}
	return fn(ctx, s, args)
}

func checkProduct(s *session, product string) error {
	if !s.Catalog.HasProduct(product) {
		return fmt.Errorf("%w: %s", explorer.ErrUnknownProduct, product)
	}
	return nil
}

func checkLayer(s *session, product, layer string) (string, error) {
	if err := checkProduct(s, product); err != nil {
		return "", err
	}
	layerID := s.Catalog.Resolve(product, layer)
	if !s.Catalog.Contains(layerID) {
		return "", fmt.Errorf("%w: %s in product %s", explorer.ErrUnknownLayer, layer, product)
	}
	return layerID, nil
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func productsAction(c *cli.Context) error {
	return withSession(c, 0, func(_ context.Context, s *session, _ cli.Args) error {
		printLines(c.App.Writer, s.Catalog.Products())
		return nil
	})
}

func layersAction(c *cli.Context) error {
	return withSession(c, 1, func(_ context.Context, s *session, args cli.Args) error {
		if err := checkProduct(s, args.Get(0)); err != nil {
			return err
		}
		printLines(c.App.Writer, s.Catalog.Layers(args.Get(0)))
		return nil
	})
}

func timesAction(c *cli.Context) error {
	return withSession(c, 2, func(_ context.Context, s *session, args cli.Args) error {
		layerID, err := checkLayer(s, args.Get(0), args.Get(1))
		if err != nil {
			return err
		}
		var extents []string
		if layer, ok := s.Layers.Layer(layerID); ok {
			extents = layer.TimeExtents
		}
		printLines(c.App.Writer, s.Expander.ExpandLayer(extents))
		return nil
	})
}

func templateAction(c *cli.Context) error {
	if c.Bool("all") {
		return withSession(c, 1, func(ctx context.Context, s *session, args cli.Args) error {
			if err := checkProduct(s, args.Get(0)); err != nil {
				return err
			}
			return printProductTemplates(ctx, c.App.Writer, s, args.Get(0), args.Get(1))
		})
	}
	return withSession(c, 2, func(ctx context.Context, s *session, args cli.Args) error {
		layerID, err := checkLayer(s, args.Get(0), args.Get(1))
		if err != nil {
			return err
		}
		timeValue, err := normalizeTime(args.Get(2))
		if err != nil {
			return err
		}
		result := s.Templater.Build(ctx, layerID, timeValue)
		if !result.OK() {
			return result.Err
		}
		printDisplay(c.App.Writer, explorer.DisplayFor(s.Layers, layerID, timeValue, result))
		return nil
	})
}

// printProductTemplates builds the templates of every layer in product
// concurrently and prints them in catalog order. Failed layers are reported
// and do not stop the others.
func printProductTemplates(ctx context.Context, w io.Writer, s *session, product, rawTime string) error {
	timeValue, err := normalizeTime(rawTime)
	if err != nil {
		return err
	}
	layers := s.Catalog.Layers(product)
	displays := make([]model.Display, len(layers))
	failures := make([]error, len(layers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTemplates)
	for i, layer := range layers {
		i, layerID := i, s.Catalog.Resolve(product, layer)
		g.Go(func() error {
			result := s.Templater.Build(gctx, layerID, timeValue)
			if !result.OK() {
				failures[i] = result.Err
				return nil
			}
			displays[i] = explorer.DisplayFor(s.Layers, layerID, timeValue, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i := range layers {
		if failures[i] != nil {
			failed++
			fmt.Fprintf(w, "%s: error: %v\n\n", s.Catalog.Resolve(product, layers[i]), failures[i])
			continue
		}
		printDisplay(w, displays[i])
		fmt.Fprintln(w)
	}
	if failed == len(layers) && failed > 0 {
		return errors.New("No template could be built for product " + product)
	}
	return nil
}

func normalizeTime(value string) (string, error) {
	if timeextent.IsNotAvailable(value) {
		return timeextent.NotAvailable, nil
	}
	t, err := model.ParseWMSTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(timeextent.Layout), nil
}

func printDisplay(w io.Writer, d model.Display) {
	fmt.Fprintf(w, "layer:    %s\n", d.Layer)
	fmt.Fprintf(w, "title:    %s\n", d.Title)
	if d.Time != "" {
		fmt.Fprintf(w, "time:     %s\n", d.Time)
	}
	if d.TimeDropped {
		fmt.Fprintln(w, "time:     (not supported by layer, omitted)")
	}
	if d.Legend != "" {
		fmt.Fprintf(w, "legend:   %s\n", d.Legend)
	}
	fmt.Fprintf(w, "template: %s\n", d.Template)
}

func versionAction(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s version %s\n", c.App.Name, version)
	return nil
}
