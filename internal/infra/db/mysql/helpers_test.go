package mysql

import (
	"errors"
	"fmt"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	dup := &driver.MySQLError{Number: 1062, Message: "Duplicate entry 'abc' for key 'uq_detection_results_text_hash'"}

	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("exec: %w", dup)))
	assert.False(t, isDuplicate(&driver.MySQLError{Number: 1146, Message: "Table doesn't exist"}))
	assert.False(t, isDuplicate(errors.New("Duplicate entry")))
	assert.False(t, isDuplicate(nil))
}
