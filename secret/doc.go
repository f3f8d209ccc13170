// Package secret resolves credentials referenced from the config file, so
// the SMTP password never has to be written into it.
//
// A value is first expanded strictly: ${VAR} must be set, and $$ is a
// literal dollar sign. If the result is a reference of the form
//
//	secretref:<provider>:<ref>
//
// it is handed to the named provider. Two providers ship with the package:
// "env" reads an environment variable and "file" reads a mounted secret
// file such as /run/secrets/smtp_password.
package secret
