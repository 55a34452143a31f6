/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension declares its own configuration structure. The configuration is
loaded from the genesis file (the "conf" section, keyed by the package name),
validated and stored as a singleton under the "_c:<package>" key.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Application must be
terminated and configured correctly.
*/
package gconf
