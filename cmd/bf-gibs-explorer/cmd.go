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
	cli "gopkg.in/urfave/cli.v1"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the bf-gibs-explorer webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:      "products",
		Aliases:   []string{"p"},
		Usage:     "List the products advertised by the WMS",
		ArgsUsage: " ",
		Action:    productsAction,
	},
	cli.Command{
		Name:      "layers",
		Aliases:   []string{"l"},
		Usage:     "List the sub-layers of a product",
		ArgsUsage: "<product>",
		Action:    layersAction,
	},
	cli.Command{
		Name:      "times",
		Aliases:   []string{"t"},
		Usage:     "List the selectable times of a layer",
		ArgsUsage: "<product> <layer>",
		Action:    timesAction,
	},
	cli.Command{
		Name:      "template",
		Usage:     "Print the tile URL template of a layer",
		ArgsUsage: "<product> <layer> [time] | --all <product> [time]",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "all", Usage: "Build templates for every layer of the product"},
		},
		Action: templateAction,
	},
	cli.Command{
		Name:    "explore",
		Aliases: []string{"e"},
		Usage:   "Browse products, layers and times interactively",
		Action:  exploreAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the explorer CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "bf-gibs-explorer"
	app.Usage = "Explore NASA GIBS imagery layers over WMS"
	app.Version = version
	app.Commands = commands
	return
}
