package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirestoreStore keeps tenant data under companies/{tenant}/{collection}/{id}.
// Documents are stored as plain maps decoded from the entity JSON, so records
// stay readable in the Firebase console.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firebase app and opens a Firestore
// client. credentialsFile may be empty, in which case application default
// credentials are used.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	conf := &firebase.Config{ProjectID: projectID}

	var app *firebase.App
	var err error
	if credentialsFile != "" {
		app, err = firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	} else {
		app, err = firebase.NewApp(ctx, conf)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (f *FirestoreStore) collection(tenantID, collection string) *firestore.CollectionRef {
	return f.client.Collection("companies").Doc(tenantID).Collection(collection)
}

func (f *FirestoreStore) GetCollection(ctx context.Context, tenantID, collection string) ([]Doc, error) {
	snaps, err := f.collection(tenantID, collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}

	docs := make([]Doc, 0, len(snaps))
	for _, snap := range snaps {
		data, err := json.Marshal(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, Doc{ID: snap.Ref.ID, Data: data})
	}
	return docs, nil
}

func (f *FirestoreStore) SaveItem(ctx context.Context, tenantID, collection, id string, data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	if _, err := f.collection(tenantID, collection).Doc(id).Set(ctx, fields); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *FirestoreStore) DeleteItem(ctx context.Context, tenantID, collection, id string) error {
	if _, err := f.collection(tenantID, collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *FirestoreStore) Close() error {
	return f.client.Close()
}
