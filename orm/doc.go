/*
Package orm stores models in prefixed sections of a KVStore.

A ModelBucket holds a single model type under a bucket name. Models are
looked up by their primary key and optionally through secondary indexes.
An index maps every key computed by its indexer to the sorted set of
primary keys indexed under it. Indexes are kept up to date on every Put
and Delete.
*/
package orm
