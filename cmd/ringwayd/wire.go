// Copyright 2025 Arcentra Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/arcentrix/ringway/pkg/logger"
	"github.com/arcentrix/ringway/pkg/metrics"
	"github.com/google/wire"
)

// initRuntime wires the per-stage logger manager and metrics layers the
// same way cmd/arcade wires its bootstrap.App: this file is never
// compiled, only read by `wire` to generate wire_gen.go.
func initRuntime(logConf *logger.MultiConf, metricsConf metrics.MetricsConfig, source metrics.RingSource) (logger.IManager, *metrics.Server, error) {
	panic(wire.Build(
		logger.ManagerProviderSet,
		metrics.ProviderSet,
	))
}
