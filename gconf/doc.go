/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension owns a single configuration object stored under the "_c:<pkg>"
key. The configuration is loaded from the genesis file with InitConfig and can
later be changed by its owner with an update configuration message processed
by UpdateConfigurationHandler.
*/
package gconf
