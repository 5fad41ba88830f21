package models

// All lists every model in dependency order, for AutoMigrate in tests and sqlite dev mode.
func All() []any {
	return []any{
		&Company{},
		&User{},
		&Category{},
		&Customer{},
		&Product{},
		&Inventory{},
		&Order{},
		&Review{},
	}
}
