package repository

import "database/sql"

// checkRowsAffected возвращает notFound, если Exec не затронул ни одной
// строки — общий паттерн для Update/Delete по ключу во всех репозиториях.
func checkRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
