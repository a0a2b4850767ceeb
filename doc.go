/*
Package barter defines the interfaces shared by the swap application:
storage, transactions, handlers, conditions and addresses.

Extensions live under x/ and are combined into a running application by
the app package.
*/
package barter
