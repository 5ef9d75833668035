package errors

// Convenience functions for common error patterns

func ConfigNotFound(path string) *ConfigurationError {
	return New(KindNotFound, "", "configuration file not found").
		WithContext("path", path)
}

func ConfigUnreadable(path string, cause error) *ConfigurationError {
	return Wrap(cause, KindNotFound, "", "configuration file could not be read").
		WithContext("path", path)
}

func Malformed(field, reason string) *ConfigurationError {
	return New(KindMalformed, field, reason)
}

func WrongType(field, want, got string) *ConfigurationError {
	return New(KindMalformed, field, "expected "+want+", got "+got).
		WithContext("want", want).
		WithContext("got", got)
}

func DuplicateAlias(key string) *ConfigurationError {
	return New(KindAlias, "resolve.alias", "duplicate alias key").
		WithContext("alias", key)
}

func AliasUnresolvable(key, target string, cause error) *ConfigurationError {
	return Wrap(cause, KindAlias, "resolve.alias", "alias target is not an existing directory").
		WithContext("alias", key).
		WithContext("target", target)
}

func UnknownPlugin(index int, name string) *ConfigurationError {
	return New(KindPlugin, "plugins", "no plugin factory registered").
		WithContext("index", index).
		WithContext("plugin", name)
}

func PluginFailed(index int, name string, cause error) *ConfigurationError {
	return Wrap(cause, KindPlugin, "plugins", "plugin factory failed").
		WithContext("index", index).
		WithContext("plugin", name)
}

func EnvFileFailed(path string, cause error) *ConfigurationError {
	return Wrap(cause, KindEnv, "envDir", "environment file could not be loaded").
		WithContext("path", path)
}
