// Package appsheet wraps the AppSheet API v2 table actions used by tapegen.
//
// Only two actions are issued: Find, which returns a whole table, and Add,
// which inserts a batch of rows. Both POST to
// {base}/apps/{ApplicationId}/tables/{table}/Action with the application key in
// the ApplicationAccessKey header. Requests are never retried.
package appsheet
