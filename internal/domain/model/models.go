package model

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Job{},
		&JobStatusHistory{},
		&VHCAuthorization{},
		&PartsRequest{},
		&JobRequest{},
		&JobWriteup{},
	}
}
