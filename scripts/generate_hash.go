//go:build ignore

// generate_hash.go - утилита для генерации Argon2id хеша пароля.
// Запуск: go run scripts/generate_hash.go ваш_пароль
//
// Хеш подходит для колонки usuarios.password_hash
// (например, чтобы вручную сбросить пароль администратора).
package main

import (
	"fmt"
	"os"

	"laboratorio3d.cl/rewards/internal/common"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <пароль>")
		os.Exit(1)
	}

	hash, err := common.HashPassword(os.Args[1])
	if err != nil {
		fmt.Printf("Ошибка генерации хеша: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш пароля (UPDATE usuarios SET password_hash = '...'):")
	fmt.Println(hash)
}
