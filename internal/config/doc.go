// Package config provides centralized configuration for the edusight
// analyses. It loads defaults, an optional YAML file and environment
// variables, validates the result and resolves file paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (edusight.yaml or configs/edusight.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDUSIGHT_<SECTION>_<FIELD>:
//
//	EDUSIGHT_LOGGING_LEVEL=debug
//	EDUSIGHT_PATHS_INPUT_DIR=./exports
//	EDUSIGHT_INPUTS_GRADES=3,4,5
//	EDUSIGHT_CHARTS_FONT_PATH=/usr/share/fonts/NotoSansTC-Regular.ttf
//
// # Path Management
//
// Paths maps bare file names onto the input and output directories:
//
//	paths, _ := config.NewPaths(cfg.Paths)
//	workbook := paths.GetInputPath(cfg.Inputs.UsageWorkbook)
//	summary := paths.GetReportPath(config.ScoreSummaryCSV)
package config
