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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/venicegeo/bf-gibs-explorer/gibs"
	"github.com/venicegeo/bf-gibs-explorer/util"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
)

const shutdownTimeout = 10 * time.Second

func createRouter(s *session) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	gibs.Mount(router, gibs.NewContext(s.Catalog, s.Layers, s.Templater, s.Expander))
	return router
}

func serveAction(*cli.Context) error {
	logContext := &(util.BasicLogContext{})

	s, err := loadSessionFunc(context.Background(), logContext)
	if err != nil {
		return util.LogSimpleErr(logContext, "Failed to start server:", err)
	}
	portStr := util.GetPortStr()
	util.LogInfo(logContext, "Listening on "+portStr)
	return launchServerFunc(portStr, createRouter(s))
}

var launchServerFunc = launchServer

// launchServer serves until SIGINT or SIGTERM, then shuts down gracefully
func launchServer(portStr string, router *mux.Router) error {
	server := &http.Server{
		Addr:              portStr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
