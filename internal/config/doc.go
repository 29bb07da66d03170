// Package config loads openrsc project configuration.
//
// The configuration lives in openrsc.json (or openrsc.yaml) at the project
// root. Every key can be overridden from the environment with the OPENRSC_
// prefix, dots becoming underscores: OPENRSC_DEV_PORT=4000.
//
//	{
//	  "source": ["app"],
//	  "manifest": "openrsc.manifest.json",
//	  "extensions": [".go"],
//	  "dev": {"port": 3456, "debounce": "150ms", "proxy": "http://localhost:3000"},
//	  "static": {"dir": "public", "prefix": "/"},
//	  "publish": {"bucket": "my-assets", "prefix": "modules", "region": "eu-west-1"}
//	}
package config
