package mysql

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"
)

// ER_DUP_ENTRY
const errDupEntry = 1062

func isDuplicate(err error) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
