// Package dynamodb provides a BlobStore that keeps each blob in a single
// DynamoDB item.
//
// Items are keyed by the string attribute "name" and carry the blob in the
// binary attribute "data". A PutItem replaces the whole item, so writes are
// atomic. DynamoDB caps items at 400KB; Put returns ErrBlobTooLarge for
// anything that does not fit.
//
// # Table Layout
//
//	aws dynamodb create-table \
//	    --table-name tinydb-snapshots \
//	    --attribute-definitions AttributeName=name,AttributeType=S \
//	    --key-schema AttributeName=name,KeyType=HASH \
//	    --billing-mode PAY_PER_REQUEST
package dynamodb
