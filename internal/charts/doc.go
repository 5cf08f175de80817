// Package charts renders the analysis results as PNG files with go-chart.
//
// Every chart is written into the configured output directory under a fixed
// file name so that repeated runs overwrite the previous images. Multi-panel
// figures are rendered panel by panel and composed into a single image.
//
// go-chart ships a Latin font only. Set charts.font_path to a CJK TrueType
// font (for example Noto Sans TC) to get readable school names and titles.
package charts
