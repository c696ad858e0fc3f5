package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQL的 "Duplicate entry" 错误号
const mysqlDuplicateEntry = 1062

// IsDuplicateKey 判断错误是否来自唯一索引冲突
// 开启了TranslateError时gorm会翻译成ErrDuplicatedKey，没开时直接看MySQL错误号
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// createIfAbsent 是“插入，冲突则什么都不做”的原子操作，返回是否真的插入了一行
// 并发双击时只有一个请求能插入成功，另一个拿到 false，不会报错
func createIfAbsent(db *gorm.DB, value interface{}, uniqueColumns ...string) (bool, error) {
	columns := make([]clause.Column, 0, len(uniqueColumns))
	for _, name := range uniqueColumns {
		columns = append(columns, clause.Column{Name: name})
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   columns,
		DoNothing: true,
	}).Create(value)
	if result.Error != nil {
		if IsDuplicateKey(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
