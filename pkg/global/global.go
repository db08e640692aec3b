// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package global

import (
	"sync/atomic"
)

// Active indicates a redirection window is currently installed.
var Active atomic.Bool

// AutoInit is set when the default redirector was built by the autoinit
// import. Used to warn users if they subsequently call Init() again.
var AutoInit atomic.Bool
