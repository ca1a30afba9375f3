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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/venicegeo/bf-gibs-explorer/explorer"
	"github.com/venicegeo/bf-gibs-explorer/util"
	cli "gopkg.in/urfave/cli.v1"
)

var exploreInput io.Reader = os.Stdin

const exploreHelp = `commands:
  product <name>   select a product
  layer <name>     select a sub-layer of the current product
  time <value>     select a time option
  refresh          rebuild the current display
  state            print the current selection and options
  help             print this message
  quit             leave`

func exploreAction(c *cli.Context) error {
	logContext := &(util.BasicLogContext{})
	ctx := context.Background()
	s, err := loadSessionFunc(ctx, logContext)
	if err != nil {
		return err
	}
	e, err := explorer.New(s.explorerConfig(logContext))
	if err != nil {
		return err
	}
	w := c.App.Writer
	unsubscribe := e.Subscribe(func(state explorer.State) { printState(w, state, false) })
	defer unsubscribe()

	fmt.Fprintln(w, exploreHelp)
	if err := e.Start(ctx); err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return explore(ctx, e, exploreInput, w)
}

// explore reads one command per line until quit or end of input
func explore(ctx context.Context, e *explorer.Explorer, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	fmt.Fprint(w, "> ")
	for scanner.Scan() {
		verb, arg := splitCommand(scanner.Text())
		var event explorer.Event
		switch verb {
		case "":
		case "product", "p":
			event = explorer.ProductSelected{Product: arg}
		case "layer", "l":
			event = explorer.LayerSelected{Layer: arg}
		case "time", "t":
			event = explorer.TimeSelected{Time: arg}
		case "refresh", "r":
			event = explorer.RefreshRequested{}
		case "state", "s":
			printState(w, e.State(), true)
		case "help", "h", "?":
			fmt.Fprintln(w, exploreHelp)
		case "quit", "q", "exit":
			return nil
		default:
			fmt.Fprintf(w, "unknown command %q, try help\n", verb)
		}
		if event != nil {
			if err := e.Dispatch(ctx, event); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
			}
		}
		fmt.Fprint(w, "> ")
	}
	return scanner.Err()
}

func splitCommand(line string) (string, string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " ")
}

// printState prints the display, or a loading line while a refresh is in
// progress. options adds the selectable values.
func printState(w io.Writer, state explorer.State, options bool) {
	if state.Loading {
		fmt.Fprintf(w, "loading %s / %s at %s ...\n", state.Product, state.Layer, state.Time)
		return
	}
	fmt.Fprintf(w, "product: %s  layer: %s  time: %s\n", state.Product, state.Layer, state.Time)
	if options {
		fmt.Fprintf(w, "products: %s\n", strings.Join(state.Products, ", "))
		fmt.Fprintf(w, "layers:   %s\n", strings.Join(state.Layers, ", "))
		fmt.Fprintf(w, "times:    %s\n", summarizeTimes(state.Times))
	}
	if !state.Display.IsZero() {
		printDisplay(w, state.Display)
	}
	if state.Error != "" {
		fmt.Fprintf(w, "error:    %s\n", state.Error)
	}
}

func summarizeTimes(times []string) string {
	if len(times) <= 6 {
		return strings.Join(times, ", ")
	}
	return fmt.Sprintf("%s ... %s (%d options)",
		strings.Join(times[:3], ", "), strings.Join(times[len(times)-3:], ", "), len(times))
}
