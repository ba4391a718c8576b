// Package util provides common utility functions and constants used across
// sshh. It imports nothing from other internal/* packages so every package can
// depend on it without cycles.
package util

const (
	// AppName names the config directory under $XDG_CONFIG_HOME and the root
	// cobra command.
	AppName = "sshh"

	// DefaultUser is offered as the login name when adding a host. Most cloud
	// images that hand out .pem keys log in as "ubuntu".
	DefaultUser = "ubuntu"

	// DefaultPemExtension is the key file suffix recognised when no
	// pem_extensions are configured.
	DefaultPemExtension = ".pem"

	// DefaultSSHBinary is looked up on PATH when launching a connection.
	DefaultSSHBinary = "ssh"

	// HostsFileName is the record file inside the config directory.
	HostsFileName = "hosts.json"
)
