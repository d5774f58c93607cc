package main

import (
    "fmt"
    "log"
    "os"
    "time"

    "github.com/urfave/cli/v2"

    "github.com/iliyamo/postboard/internal/feed"
    "github.com/iliyamo/postboard/internal/model"
)

func main() {
    app := &cli.App{
        Name:  "feed",
        Usage: "browse and post to a postboard server",
        Flags: []cli.Flag{
            &cli.StringFlag{
                Name:    "api",
                Value:   "http://localhost:8080",
                Usage:   "base URL of the server",
                EnvVars: []string{"POSTBOARD_API"},
            },
        },
        Commands: []*cli.Command{
            {
                Name:  "list",
                Usage: "print every post with its comments",
                Action: func(c *cli.Context) error {
                    f := feed.New(feed.NewClient(c.String("api")))
                    if err := f.Load(c.Context); err != nil {
                        return err
                    }
                    return feed.Render(os.Stdout, f.Posts, time.Now())
                },
            },
            {
                Name:  "post",
                Usage: "create a post and print the refreshed feed",
                Flags: []cli.Flag{
                    &cli.StringFlag{Name: "title", Required: true},
                    &cli.StringFlag{Name: "content", Required: true},
                    &cli.StringFlag{Name: "user", Required: true, Usage: "author user id"},
                },
                Action: func(c *cli.Context) error {
                    f := feed.New(feed.NewClient(c.String("api")))
                    if err := f.Load(c.Context); err != nil {
                        return err
                    }
                    p, err := f.Submit(c.Context, model.NewPost{
                        Title:     c.String("title"),
                        Content:   c.String("content"),
                        AppUserID: c.String("user"),
                    })
                    if err != nil {
                        return err
                    }
                    fmt.Printf("created %s\n\n", p.ID)
                    return feed.Render(os.Stdout, f.Posts, time.Now())
                },
            },
        },
    }
    if err := app.Run(os.Args); err != nil {
        log.Fatal(err)
    }
}
