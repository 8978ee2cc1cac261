package elastic

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

const QuestionIndex = "questions"

func NewElasticClient(ctx context.Context, username, password string, hosts []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: hosts,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: bad client config: %w", err)
	}
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}
	return client, nil
}
