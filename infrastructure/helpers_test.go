package infrastructure

import "github.com/hashicorp/go-hclog"

func nopLogger() hclog.Logger { return hclog.NewNullLogger() }
