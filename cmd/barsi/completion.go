package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion.
// Install with COMP_INSTALL=1 barsi.
func completion() *complete.Command {
	output := map[string]complete.Predictor{"o": predict.Set{"markdown", "json", "yaml"}}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.toml"),
			"c":         predict.Files("*.toml"),
			"log-level": predict.Set{"trace", "debug", "info", "warn", "error"},
			"data":      predict.Dirs("*"),
			"provider":  predict.Set{"eodhd", "yahoo", "auto"},
			"workers":   predict.Something,
			"plain":     predict.Nothing,
			"q":         predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"rows": {
				Flags: map[string]complete.Predictor{
					"refresh": predict.Nothing,
					"o":       predict.Set{"markdown", "json", "yaml"},
				},
			},
			"catalog": {
				Flags: output,
				Args:  predict.Set{"status", "rebuild", "search", "sectors", "sector", "besst", "show"},
			},
			"watchlist": {
				Args: predict.Set{"list", "add", "remove"},
			},
			"portfolio": {
				Flags: output,
				Args:  predict.Set{"list", "set", "remove", "value"},
			},
			"version":  {},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
