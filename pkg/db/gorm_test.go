package db

import "testing"

func TestOpenGormRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenGorm(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpenGormSQLite(t *testing.T) {
	gdb, err := OpenGorm(Config{Driver: DriverSQLite, DSN: "file:opengorm?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
