package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	EnvServerURL     = "COLONIES_SERVER_URL"
	EnvServerPrvKey  = "COLONIES_SERVER_PRVKEY"
	EnvPrvKey        = "COLONIES_PRVKEY"
	EnvColonyName    = "COLONIES_COLONY_NAME"
	EnvColonyPrvKey  = "COLONIES_COLONY_PRVKEY"
	EnvExecutorName  = "COLONIES_EXECUTOR_NAME"
	EnvExecutorType  = "COLONIES_EXECUTOR_TYPE"
	EnvTimeout       = "COLONIES_REQUEST_TIMEOUT"
	EnvSecurityMode  = "COLONIES_SECURITY_MODE"
	EnvTLS           = "COLONIES_TLS"
	EnvTLSCAFile     = "COLONIES_TLS_CA_FILE"
	EnvTLSSkipVerify = "COLONIES_TLS_INSECURE_SKIP_VERIFY"
)

// ApplyEnv overrides profile fields with any non-empty COLONIES_* variable.
// Invalid booleans are ignored.
func ApplyEnv(p *Profile) {
	setString(&p.ServerURL, EnvServerURL)
	setString(&p.ServerPrvKey, EnvServerPrvKey)
	setString(&p.PrvKey, EnvPrvKey)
	setString(&p.ColonyName, EnvColonyName)
	setString(&p.ColonyPrvKey, EnvColonyPrvKey)
	setString(&p.Executor.Name, EnvExecutorName)
	setString(&p.Executor.Type, EnvExecutorType)
	setString(&p.RequestTimeout, EnvTimeout)
	setString(&p.Security.Mode, EnvSecurityMode)
	setString(&p.Security.CAFile, EnvTLSCAFile)
	setBool(&p.Security.TLS, EnvTLS)
	setBool(&p.Security.InsecureSkipVerify, EnvTLSSkipVerify)
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, name string) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		*dst = v
	}
}
