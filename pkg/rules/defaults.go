package rules

import "github.com/jingkaihe/skillaudit/pkg/types/audit"

// DefaultRules returns the builtin rule set. It covers arbitrary code
// execution, OS command execution, unsafe deserialization, dynamic import,
// and shell-interpreted subprocess invocation across the supported
// languages.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        "exec-arbitrary-code",
			Message:   "arbitrary code execution via eval/exec",
			Severity:  audit.SeverityCritical,
			Languages: []string{"python"},
			Calls:     []string{"eval", "exec", "compile"},
		},
		{
			ID:        "exec-arbitrary-code-js",
			Message:   "arbitrary code execution via eval or dynamic Function",
			Severity:  audit.SeverityCritical,
			Languages: []string{"javascript"},
			Calls:     []string{"eval", "Function", "vm.runInThisContext", "vm.runInNewContext"},
		},
		{
			ID:        "os-command-exec",
			Message:   "direct OS command execution",
			Severity:  audit.SeverityCritical,
			Languages: []string{"python"},
			Calls:     []string{"os.system", "os.popen", "os.execv", "os.execve", "os.spawnl"},
		},
		{
			ID:        "os-command-exec-js",
			Message:   "shell command execution via child_process",
			Severity:  audit.SeverityCritical,
			Languages: []string{"javascript"},
			Calls:     []string{"child_process.exec", "child_process.execSync", "cp.exec", "cp.execSync"},
		},
		{
			ID:        "subprocess-shell-true",
			Message:   "subprocess invoked with shell=True",
			Severity:  audit.SeverityHigh,
			Languages: []string{"python"},
			Calls: []string{
				"subprocess.run", "subprocess.call", "subprocess.check_call",
				"subprocess.check_output", "subprocess.Popen",
			},
			RequireKwarg: &KwargMatch{Name: "shell", Value: "True"},
		},
		{
			ID:        "unsafe-deserialization",
			Message:   "unsafe deserialization of untrusted data",
			Severity:  audit.SeverityHigh,
			Languages: []string{"python"},
			Calls:     []string{"pickle.load", "pickle.loads", "marshal.load", "marshal.loads", "yaml.load"},
		},
		{
			ID:        "dynamic-import",
			Message:   "dynamic module import",
			Severity:  audit.SeverityMedium,
			Languages: []string{"python"},
			Calls:     []string{"__import__", "importlib.import_module"},
		},
		{
			ID:        "dynamic-import-js",
			Message:   "dynamic module import via import()",
			Severity:  audit.SeverityMedium,
			Languages: []string{"javascript"},
			Calls:     []string{"import"},
		},
		{
			ID:        "shell-eval",
			Message:   "shell eval of dynamic content",
			Severity:  audit.SeverityCritical,
			Languages: []string{"bash"},
			Calls:     []string{"eval"},
		},
		{
			ID:        "shell-remote-exec",
			Message:   "piping downloaded content into an interpreter",
			Severity:  audit.SeverityHigh,
			Languages: []string{"bash"},
			Calls:     []string{"curl", "wget"},
			RequireKwarg: &KwargMatch{
				// For shell rules the kwarg matcher is repurposed as a
				// pipeline constraint: the call must feed an interpreter.
				Name:  "pipe_to",
				Value: "sh|bash|python|python3",
			},
		},
	}
}

// DefaultSet returns a ready-to-use Set of the builtin rules
func DefaultSet() *Set {
	return NewSet(DefaultRules())
}
