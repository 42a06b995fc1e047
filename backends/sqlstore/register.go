package sqlstore

import "github.com/ajiwo/askailimiter/backends"

func init() {
	factory := func(driver string) backends.BackendFactory {
		return func(config any) (backends.Backend, error) {
			switch c := config.(type) {
			case Config:
				c.Driver = driver
				return New(c)
			case string:
				return New(Config{Driver: driver, DSN: c})
			default:
				return nil, backends.NewInvalidConfigError(driver, config)
			}
		}
	}
	backends.Register("sqlite", factory(DriverSQLite))
	backends.Register("mysql", factory(DriverMySQL))
}
