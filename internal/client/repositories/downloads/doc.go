// Package downloads keeps the local ledger of saved exam documents: which
// exam was saved, where, by which saver, and when.
//
// Typical usage
//
//	repo := downloads.NewSQLiteRepository(db)
//	_ = repo.Record(ctx, d)
//	recent, _ := repo.List(ctx, 20)
//	forExam, _ := repo.ListByExam(ctx, examID)
package downloads
