// bcdb-cli 签名查询 bcdb 节点的命令行客户端
package main

func main() {
	Execute()
}
