// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package autoinit enables console redirection at program start when
// imported. It only acts when configuration is actually discovered
// (CONREDIR_CONFIGJSON, CONREDIR_CONFIGFILE, or a conredir.json file), so a
// bare import in an unconfigured environment changes nothing:
//
//	import _ "github.com/conredirdev/conredir/autoinit"
package autoinit

import (
	"os"

	"github.com/conredirdev/conredir"
	"github.com/conredirdev/conredir/pkg/base"
	"github.com/conredirdev/conredir/pkg/config"
	"github.com/conredirdev/conredir/pkg/global"
)

func init() {
	if os.Getenv(base.DisabledEnvName) != "" {
		return
	}
	cfg, err := config.LoadConfig()
	if err != nil || cfg == nil {
		return
	}
	r, err := conredir.Init(cfg)
	if err != nil || r == nil {
		return
	}
	if err := r.Enable(); err == nil {
		global.AutoInit.Store(true)
	}
}
