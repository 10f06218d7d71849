package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "client":
		return clientTemplate, nil
	case "executor":
		return executorTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const clientTemplate = `server_url = "http://localhost:50080/api"
prvkey = ""
colony_name = "dev"
colony_prvkey = ""
request_timeout = "30s"

[security]
mode = "development"
tls = false
ca_file = ""
`

const executorTemplate = `server_url = "http://localhost:50080/api"
prvkey = ""
colony_name = "dev"
colony_prvkey = ""
request_timeout = "30s"

[security]
mode = "development"
tls = false

[executor]
name = "executor-1"
type = "cli"
workers = 2
assign_timeout = "10s"
poll_rate = 5.0
self_approve = false
functions = ["echo", "add", "sleep"]
`
