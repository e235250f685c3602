// Package config loads the device service configuration.
//
// Values are layered: built-in defaults, then the YAML file, then
// DEVICESERVICE_* environment variables. Validate runs last and rejects
// ports that leave no room for the auxiliary listener on port+1.
//
// An empty apiKey disables the remote specs client; enrichment then relies
// on the reference dataset alone. Prefer DEVICESERVICE_API_KEY over writing
// the key into the file.
//
//	cfg, err := config.Load("var/conf/conf.yml")
//	if err != nil {
//	    return err
//	}
//	loc, err := cfg.GetBookingLocation()
package config
