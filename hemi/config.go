// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Configuration. The config file is a YAML sequence of servers:
//
//	- server:
//	    listen: 8080
//	    host: [example.com, www.example.com]
//	    root: ./www
//	    ...

package hemi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultMethods = []string{"GET", "HEAD"}

// defaultGzipExts is used by "gzip: true".
var defaultGzipExts = []string{"html", "htm", "css", "js", "mjs", "json", "xml", "svg", "txt", "csv"}

// serverEntry is an item of the config sequence.
type serverEntry struct {
	Server *serverConfig `yaml:"server"`
}

// serverConfig is the raw config of a vhost.
type serverConfig struct {
	Listen     *int64            `yaml:"listen"`
	Host       hostList          `yaml:"host"`
	Root       string            `yaml:"root"`
	Methods    []string          `yaml:"methods"`
	Index      string            `yaml:"index"`
	Directory  directoryConfig   `yaml:"directory"`
	Headers    []string          `yaml:"headers"`
	Auth       authConfig        `yaml:"auth"`
	Rewrite    map[string]string `yaml:"rewrite"`
	Extensions []string          `yaml:"extensions"`
	Error      map[int]string    `yaml:"error"`
	Gzip       gzipConfig        `yaml:"gzip"`
	Log        logConfig         `yaml:"log"`
}

// hostList accepts a string or a list of strings.
type hostList struct {
	set   bool
	hosts []string
}

func (h *hostList) UnmarshalYAML(value *yaml.Node) error {
	h.set = true
	switch value.Kind {
	case yaml.ScalarNode:
		var host string
		if err := value.Decode(&host); err != nil {
			return err
		}
		h.hosts = []string{host}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&h.hosts)
	default:
		return fmt.Errorf("line %d: host must be a string or a list of strings", value.Line)
	}
}

// directoryConfig accepts a bool or {time: bool, size: bool}.
type directoryConfig struct {
	enabled bool
	option  ListingOption
}

func (d *directoryConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&d.enabled)
	case yaml.MappingNode:
		var option struct {
			Time bool `yaml:"time"`
			Size bool `yaml:"size"`
		}
		if err := value.Decode(&option); err != nil {
			return err
		}
		d.enabled = true
		d.option = ListingOption{ShowTime: option.Time, ShowSize: option.Size}
		return nil
	default:
		return fmt.Errorf("line %d: directory must be a bool or {time, size}", value.Line)
	}
}

// authConfig accepts "user:password" or {user: string, password: string}.
type authConfig struct {
	set      bool
	user     string
	password string
}

func (a *authConfig) UnmarshalYAML(value *yaml.Node) error {
	a.set = true
	switch value.Kind {
	case yaml.ScalarNode:
		var credential string
		if err := value.Decode(&credential); err != nil {
			return err
		}
		user, password, ok := strings.Cut(credential, ":")
		if !ok {
			return fmt.Errorf("line %d: auth must be in form of \"user:password\"", value.Line)
		}
		a.user, a.password = user, password
		return nil
	case yaml.MappingNode:
		var credential struct {
			User     string `yaml:"user"`
			Password string `yaml:"password"`
		}
		if err := value.Decode(&credential); err != nil {
			return err
		}
		a.user, a.password = credential.User, credential.Password
		return nil
	default:
		return fmt.Errorf("line %d: auth must be a string or {user, password}", value.Line)
	}
}

// gzipConfig accepts a bool or a list of extensions.
type gzipConfig struct {
	exts []string
}

func (g *gzipConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return err
		}
		if enabled {
			g.exts = defaultGzipExts
		}
		return nil
	case yaml.SequenceNode:
		if err := value.Decode(&g.exts); err != nil {
			return err
		}
		if g.exts == nil { // "gzip: []"
			g.exts = []string{}
		}
		return nil
	default:
		return fmt.Errorf("line %d: gzip must be a bool or a list of extensions", value.Line)
	}
}

type logConfig struct {
	Success string `yaml:"success"`
	Error   string `yaml:"error"`
	Logger  string `yaml:"logger"`  // "file" by default
	Rotate  string `yaml:"rotate"`  // "", "day", "hour"
	BufSize int32  `yaml:"bufsize"` // for loggers that buffer
}

// configurator applies configuration and creates a new stage.
type configurator struct {
	// States
	baseDir string            // relative paths in config are resolved against this
	loggers map[string]Logger // indexed by absolute target. shared between vhosts
}

func (c *configurator) stageFromText(configText string) (stage *Stage, err error) {
	var entries []serverEntry
	decoder := yaml.NewDecoder(strings.NewReader(configText))
	decoder.KnownFields(true)
	if err := decoder.Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, errors.New("config is empty")
		}
		return nil, fmt.Errorf("bad config: %w", err)
	}
	return c.newStage(entries)
}
func (c *configurator) stageFromFile(configFile string) (stage *Stage, err error) {
	configText, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}
	return c.stageFromText(string(configText))
}

func (c *configurator) newStage(entries []serverEntry) (stage *Stage, err error) {
	if len(entries) == 0 {
		return nil, errors.New("no servers in config")
	}
	c.loggers = make(map[string]Logger)
	stage = newStage()
	defer func() {
		if err != nil {
			for _, logger := range c.loggers {
				logger.Close()
			}
		}
	}()
	for i, entry := range entries {
		name := fmt.Sprintf("server#%d", i)
		if entry.Server == nil {
			return nil, fmt.Errorf("%s: missing server", name)
		}
		vhost, err := c.newVhost(name, entry.Server)
		if err != nil {
			return nil, err
		}
		if err := stage.addVhost(vhost); err != nil {
			return nil, err
		}
	}
	for _, logger := range c.loggers {
		stage.addLogger(logger)
	}
	return stage, nil
}

func (c *configurator) newVhost(name string, config *serverConfig) (*Vhost, error) {
	vhost := new(Vhost)
	vhost.name = name

	// listen
	if config.Listen == nil {
		return nil, fmt.Errorf("%s: listen is required", name)
	}
	if port := *config.Listen; port < 0 || port > 65535 { // 0 means an ephemeral port
		return nil, fmt.Errorf("%s: listen: port %d is out of range", name, port)
	}
	vhost.port = int32(*config.Listen)

	// host
	if config.Host.set {
		if len(config.Host.hosts) == 0 {
			return nil, fmt.Errorf("%s: host: list is empty", name)
		}
		for _, hostname := range config.Host.hosts {
			if hostname == "" {
				return nil, fmt.Errorf("%s: host: empty hostname", name)
			}
		}
		vhost.hostnames = config.Host.hosts
	}

	// root
	if config.Root == "" {
		return nil, fmt.Errorf("%s: root is required", name)
	}
	vhost.webRoot = c.absPath(config.Root)
	if info, err := os.Stat(vhost.webRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: root: %s is not a directory", name, vhost.webRoot)
	}

	// methods
	if config.Methods == nil {
		vhost.methods = defaultMethods
	} else {
		for _, method := range config.Methods {
			if method == "" || strings.ContainsAny(method, " \t\r\n") {
				return nil, fmt.Errorf("%s: methods: bad method %q", name, method)
			}
		}
		vhost.methods = config.Methods
	}

	// index
	if strings.Contains(config.Index, "/") {
		return nil, fmt.Errorf("%s: index: %q must be a file name", name, config.Index)
	}
	vhost.indexFile = config.Index

	// directory
	if config.Directory.enabled {
		option := config.Directory.option
		vhost.listing = &option
	}

	// headers
	for _, header := range config.Headers {
		headerName, value, ok := strings.Cut(header, " ")
		if !ok || headerName == "" {
			return nil, fmt.Errorf("%s: headers: %q must be in form of \"Name Value\"", name, header)
		}
		vhost.headers = append(vhost.headers, vhostHeader{headerName, value})
	}

	// auth
	if config.Auth.set {
		if config.Auth.user == "" {
			return nil, fmt.Errorf("%s: auth: user is required", name)
		}
		vhost.auth = basicAuth(config.Auth.user, config.Auth.password)
	}

	// rewrite
	if len(config.Rewrite) > 0 {
		vhost.rewrites = make(map[string]*RewriteRule, len(config.Rewrite))
		for path, value := range config.Rewrite {
			rule, err := parseRewriteRule(value)
			if err != nil {
				return nil, fmt.Errorf("%s: rewrite %s: %w", name, path, err)
			}
			vhost.rewrites[path] = rule
		}
	}

	// extensions
	for _, ext := range config.Extensions {
		if ext == "" || strings.ContainsAny(ext, "./") {
			return nil, fmt.Errorf("%s: extensions: bad extension %q", name, ext)
		}
	}
	vhost.extensions = config.Extensions

	// error
	for status, page := range config.Error {
		switch status {
		case StatusNotFound:
			vhost.page404 = c.absPath(page)
		case StatusInternalServerError:
			vhost.page500 = c.absPath(page)
		default:
			return nil, fmt.Errorf("%s: error: status %d is not supported", name, status)
		}
	}

	// gzip
	vhost.gzipExts = config.Gzip.exts

	// log
	logger := config.Log.Logger
	if logger == "" {
		logger = "file"
	} else if !loggerRegistered(logger) {
		return nil, fmt.Errorf("%s: log: unknown logger %q", name, logger)
	}
	switch config.Log.Rotate {
	case "", "day", "hour":
	default:
		return nil, fmt.Errorf("%s: log: rotate must be \"day\" or \"hour\"", name)
	}
	var err error
	if config.Log.Success != "" {
		if vhost.successLog, err = c.newLogger(logger, config.Log.Success, &config.Log); err != nil {
			return nil, fmt.Errorf("%s: log: success: %w", name, err)
		}
	}
	if config.Log.Error != "" {
		if vhost.errorLog, err = c.newLogger(logger, config.Log.Error, &config.Log); err != nil {
			return nil, fmt.Errorf("%s: log: error: %w", name, err)
		}
	}

	return vhost, nil
}

// newLogger creates a logger for target, or returns the one already created for it.
func (c *configurator) newLogger(loggerSign string, target string, config *logConfig) (Logger, error) {
	target = c.absPath(target)
	if logger, ok := c.loggers[target]; ok {
		return logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}
	bufSize := config.BufSize
	if bufSize <= 0 {
		bufSize = _4K
	}
	logger, err := createLogger(loggerSign, &LogConfig{Target: target, Rotate: config.Rotate, BufSize: bufSize})
	if err != nil {
		return nil, err
	}
	c.loggers[target] = logger
	return logger, nil
}

func (c *configurator) absPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.baseDir, path)
}

// parseRewriteRule parses "301 /new", "302 https://example.org/", or "path /b".
func parseRewriteRule(value string) (*RewriteRule, error) {
	kind, target, ok := strings.Cut(strings.TrimSpace(value), " ")
	target = strings.TrimSpace(target)
	if !ok || target == "" {
		return nil, fmt.Errorf("%q must be in form of \"<301|302|path> <target>\"", value)
	}
	rule := &RewriteRule{Target: target}
	switch kind {
	case "301":
		rule.Kind = RewriteRedirect301
	case "302":
		rule.Kind = RewriteRedirect302
	case "path":
		rule.Kind = RewritePath
	default:
		return nil, fmt.Errorf("unknown rewrite kind %q", kind)
	}
	return rule, nil
}

// basicAuth returns the Authorization value of a basic credential.
func basicAuth(user string, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}
