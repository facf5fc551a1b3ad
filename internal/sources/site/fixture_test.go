package site

// journeyYAML mirrors a real programming-journal site declaration.
const journeyYAML = `navbar:
  - /
  - text: 编程语言
    prefix: /docs/language/
    icon: /assets/icons/programming.svg
    children:
      - cpp/
      - go/
      - rust/
  - text: 数据库
    prefix: /docs/database/
    icon: /assets/icons/database.svg
    children: [redis/, hbase/]
  - text: 中间件
    prefix: /docs/middleware/
    icon: /assets/icons/middleware.svg
    children:
      - text: 消息队列
        prefix: mq/
        icon: /assets/icons/mq.svg
        children:
          - nats/
  - /docs/algorithm/
  - text: Web Server
    prefix: /docs/web_server/
    icon: /assets/icons/server.svg
    children:
      - nginx/
  - /docs/os/
  - /docs/network/
  - /docs/interview/
  - /docs/projects/
  - /docs/tools/

sidebar:
  /docs/language: structure
  /docs/database/: structure
  /docs/middleware/: structure
  /docs/cs_basics/: structure
  /docs/ai/: structure
  /docs/interview/: structure
  /docs/web_server/: structure
  /docs/projects/: structure

theme:
  hostname: https://rookiiie.top
  author:
    name: MorseWayne
    url: https://rookiiie.top
  logo: /books.svg
  repo: MorseWayne/programming_journey
  docsDir: docs
  darkmode: switch
  toggle: true
  displayFooter: true
  metaLocales:
    editLink: 在 GitHub 上编辑此页
  plugins:
    blog: true
    comment:
      provider: Waline
      serverURL: https://programmingjourneycomments.vercel.app/
    pwa:
      favicon: /books.svg
      cacheHTML: false

encrypt:
  /demo/encrypt.html:
    hint: "Password: 1234"
    password: "1234"
`
