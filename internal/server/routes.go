package server

import "strings"

// Route paths relative to the mount point.
const (
	routeDatasets = "/datasets"
	routeParams   = "/params"
	routeSlide    = "/slide"
	routeResults  = "/results"
	routeTSV      = "/results.tsv"
	routeXLSX     = "/results.xlsx"
	routeOpenAPI  = "/openapi.json"
	routeAssets   = "/assets"
	routeHealth   = "/health"
)

// Endpoints lists the browser-facing URLs of a mounted server.
type Endpoints struct {
	Datasets string
	Params   string
	Slide    string
	Results  string
	TSV      string
	XLSX     string
	OpenAPI  string
	Assets   string
}

func endpointsFor(basePath string) Endpoints {
	return Endpoints{
		Datasets: mountPath(basePath, routeDatasets),
		Params:   mountPath(basePath, routeParams),
		Slide:    mountPath(basePath, routeSlide),
		Results:  mountPath(basePath, routeResults),
		TSV:      mountPath(basePath, routeTSV),
		XLSX:     mountPath(basePath, routeXLSX),
		OpenAPI:  mountPath(basePath, routeOpenAPI),
		Assets:   mountPath(basePath, routeAssets),
	}
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
