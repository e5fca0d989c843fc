// Package transaction sequences cluster and environment lifecycle steps.
//
// Steps are pushed onto a [Transaction] and run by [Transaction.Commit]
// strictly in insertion order, one at a time. The first step that does not
// succeed stops the commit. Infrastructure failures trigger a rollback
// through the cluster's compensating hooks; environment failures also report
// every service the executor did not process as failed, databases first,
// then applications, then routers.
//
// Cancellation is cooperative. The abort predicate is polled before build,
// deploy, pause and delete environment steps, and is threaded into the build
// platform so a running build can stop early. Infrastructure steps always
// run to completion.
package transaction
